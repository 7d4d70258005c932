package commands

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/mmapbuf"
)

// edit opens path read-write, runs fn and closes the buffer, which
// truncates the file to the new length.
func (a *app) edit(cmd *cobra.Command, path string, mode mmapbuf.Mode, fn func(*mmapbuf.Buffer) error) (err error) {
	buf, err := a.open(cmd, path, mode)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, buf.Close()) }()
	return fn(buf)
}

func (a *app) spliceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "splice FILE POS REMOVE TEXT",
		Short: "Replace REMOVE bytes at POS with TEXT",
		Long: `Replace REMOVE bytes starting at POS with TEXT. A negative POS counts from
the end of the content.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("position: %w", err)
			}
			remove, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("remove: %w", err)
			}
			return a.edit(cmd, args[0], mmapbuf.ModeReadWrite, func(buf *mmapbuf.Buffer) error {
				return buf.Replace(pos, remove, []byte(args[3]))
			})
		},
	}
}

func (a *app) appendCmd() *cobra.Command {
	var newline bool
	cmd := &cobra.Command{
		Use:   "append FILE TEXT",
		Short: "Append TEXT, creating FILE if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := args[1]
			if newline {
				text += "\n"
			}
			return a.edit(cmd, args[0], mmapbuf.ModeAppend, func(buf *mmapbuf.Buffer) error {
				return buf.Append([]byte(text))
			})
		},
	}
	cmd.Flags().BoolVarP(&newline, "newline", "n", false, "append a trailing newline")
	return cmd
}

func (a *app) subCmd(global bool) *cobra.Command {
	var literal bool
	use, short := "sub", "Replace the first match of PATTERN"
	if global {
		use, short = "gsub", "Replace every match of PATTERN"
	}
	cmd := &cobra.Command{
		Use:   use + " FILE PATTERN TEMPLATE",
		Short: short,
		Long: short + `.

PATTERN is a Go regular expression unless --literal is set. TEMPLATE may
reference groups as $1, ${1} or ${name}; $$ is a literal dollar.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var m mmapbuf.Matcher
			if literal {
				m = mmapbuf.Literal([]byte(args[1]))
			} else {
				re, err := regexp.Compile(args[1])
				if err != nil {
					return fmt.Errorf("pattern: %w", err)
				}
				m = mmapbuf.Regexp(re)
			}
			return a.edit(cmd, args[0], mmapbuf.ModeReadWrite, func(buf *mmapbuf.Buffer) error {
				sub := buf.Sub
				if global {
					sub = buf.Gsub
				}
				changed, err := sub(m, []byte(args[2]))
				if err != nil {
					return err
				}
				if !changed {
					cmd.PrintErrln("no match")
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&literal, "literal", "F", false, "treat PATTERN as a fixed string")
	return cmd
}

var transforms = map[string]func(*mmapbuf.Buffer) (bool, error){
	"upcase":     (*mmapbuf.Buffer).Upcase,
	"downcase":   (*mmapbuf.Buffer).Downcase,
	"capitalize": (*mmapbuf.Buffer).Capitalize,
	"swapcase":   (*mmapbuf.Buffer).Swapcase,
	"reverse":    (*mmapbuf.Buffer).Reverse,
	"strip":      (*mmapbuf.Buffer).Strip,
	"chop":       (*mmapbuf.Buffer).Chop,
	"chomp":      func(b *mmapbuf.Buffer) (bool, error) { return b.Chomp() },
	"squeeze":    func(b *mmapbuf.Buffer) (bool, error) { return b.Squeeze() },
}

func transformNames() []string {
	names := make([]string, 0, len(transforms))
	for name := range transforms {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (a *app) transformCmd() *cobra.Command {
	var deleteSets []string
	cmd := &cobra.Command{
		Use:   "transform FILE [OP...]",
		Short: "Apply in-place transforms in order",
		Long: fmt.Sprintf(`Apply transforms in the order given. Operations: %s.

--delete removes every byte in the intersection of the given tr-style sets
before the operations run.`, strings.Join(transformNames(), ", ")),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := make([]func(*mmapbuf.Buffer) (bool, error), 0, len(args)-1)
			for _, name := range args[1:] {
				op, ok := transforms[name]
				if !ok {
					return fmt.Errorf("unknown transform %q", name)
				}
				ops = append(ops, op)
			}
			return a.edit(cmd, args[0], mmapbuf.ModeReadWrite, func(buf *mmapbuf.Buffer) error {
				if len(deleteSets) > 0 {
					if _, err := buf.Delete(deleteSets...); err != nil {
						return err
					}
				}
				for _, op := range ops {
					if _, err := op(buf); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&deleteSets, "delete", nil, "character set to delete (repeat to intersect)")
	return cmd
}

func (a *app) flushCmd() *cobra.Command {
	var async bool
	cmd := &cobra.Command{
		Use:   "flush FILE",
		Short: "Sync the mapping and shrink the file to its content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := mmapbuf.SyncSync
			if async {
				mode = mmapbuf.SyncAsync
			}
			return a.edit(cmd, args[0], mmapbuf.ModeReadWrite, func(buf *mmapbuf.Buffer) error {
				return buf.Flush(mode)
			})
		},
	}
	cmd.Flags().BoolVar(&async, "async", false, "schedule the write-back without waiting")
	return cmd
}
