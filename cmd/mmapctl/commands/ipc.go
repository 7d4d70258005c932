package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/mmapbuf"
)

func (a *app) ipcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ipc",
		Short: "Work with System V shared-memory buffers",
		Long: `Create, inspect and lock shared-memory buffers. Segments created here are
permanent; remove them with ipcrm(1) when done.`,
	}
	cmd.AddCommand(a.ipcCreateCmd(), a.ipcInfoCmd(), a.ipcCatCmd(), a.ipcLockCmd())
	return cmd
}

// attach opens the shared buffer named by --ipc-key.
func (a *app) attach(cmd *cobra.Command, mode mmapbuf.Mode) (*mmapbuf.Buffer, error) {
	opts, err := a.options(cmd, mode)
	if err != nil {
		return nil, err
	}
	key, _ := cmd.Flags().GetInt("ipc-key")
	if key <= 0 {
		return nil, fmt.Errorf("%w: --ipc-key is required", mmapbuf.ErrInvalidArgument)
	}
	return mmapbuf.NewAnonymous(0, append(opts, mmapbuf.WithIPC(mmapbuf.IPCConfig{Key: key}))...)
}

func (a *app) ipcCreateCmd() *cobra.Command {
	var (
		size string
		text string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a permanent shared buffer and print its key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			n, err := humanize.ParseBytes(size)
			if err != nil {
				return fmt.Errorf("size: %w", err)
			}
			if n == 0 {
				n = uint64(len(text))
			}
			opts, err := a.options(cmd, mmapbuf.ModeReadWrite)
			if err != nil {
				return err
			}
			key, _ := cmd.Flags().GetInt("ipc-key")
			buf, err := mmapbuf.NewAnonymous(int(n), append(opts,
				mmapbuf.WithIPC(mmapbuf.IPCConfig{Key: key, Permanent: true}))...)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, buf.Close()) }()

			if text != "" {
				if len(text) > buf.Len() {
					return fmt.Errorf("%w: text is longer than the segment", mmapbuf.ErrInvalidArgument)
				}
				if err := buf.Replace(0, len(text), []byte(text)); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), buf.IPCKey())
			return nil
		},
	}
	cmd.Flags().StringVar(&size, "size", "0", "segment content size, e.g. 4KiB (default: length of --text)")
	cmd.Flags().StringVar(&text, "text", "", "initial content")
	return cmd
}

func (a *app) ipcInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the state of the shared buffer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			buf, err := a.attach(cmd, mmapbuf.ModeRead)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, buf.Close()) }()
			printInfo(cmd, buf)
			return nil
		},
	}
}

func (a *app) ipcCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat",
		Short: "Write the shared content to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			buf, err := a.attach(cmd, mmapbuf.ModeRead)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, buf.Close()) }()
			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}

func (a *app) ipcLockCmd() *cobra.Command {
	var (
		hold time.Duration
		try  bool
	)
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Hold the cross-process lock for a while",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			buf, err := a.attach(cmd, mmapbuf.ModeReadWrite)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, buf.Close()) }()

			if err := buf.AcquireContext(cmd.Context(), !try); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "locked %d for %s\n", buf.IPCKey(), hold)
			select {
			case <-time.After(hold):
			case <-cmd.Context().Done():
			}
			return buf.Release()
		},
	}
	cmd.Flags().DurationVar(&hold, "hold", time.Second, "how long to keep the lock")
	cmd.Flags().BoolVar(&try, "try", false, "fail instead of waiting when the lock is taken")
	return cmd
}
