package commands

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/mmapbuf"
)

func (a *app) catCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat FILE",
		Short: "Write the mapped content to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			buf, err := a.open(cmd, args[0], mmapbuf.ModeRead)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, buf.Close()) }()

			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Show length, capacity and mapping state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			buf, err := a.open(cmd, args[0], mmapbuf.ModeRead)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, buf.Close()) }()

			printInfo(cmd, buf)
			return nil
		},
	}
}

func printInfo(cmd *cobra.Command, buf *mmapbuf.Buffer) {
	w := cmd.OutOrStdout()
	if buf.Path() != "" {
		fmt.Fprintf(w, "path:       %s\n", buf.Path())
	}
	fmt.Fprintf(w, "length:     %d (%s)\n", buf.Len(), humanize.IBytes(uint64(buf.Len())))
	fmt.Fprintf(w, "capacity:   %d (%s)\n", buf.Cap(), humanize.IBytes(uint64(buf.Cap())))
	fmt.Fprintf(w, "offset:     %d\n", buf.Offset())
	fmt.Fprintf(w, "scope:      %s\n", buf.Scope())
	fmt.Fprintf(w, "protection: %s\n", buf.Protection())
	fmt.Fprintf(w, "advice:     %s\n", buf.Advice())
	fmt.Fprintf(w, "fixed:      %t\n", buf.Fixed())
	fmt.Fprintf(w, "frozen:     %t\n", buf.Frozen())
	if buf.IPC() {
		fmt.Fprintf(w, "ipc key:    %d\n", buf.IPCKey())
	}
}
