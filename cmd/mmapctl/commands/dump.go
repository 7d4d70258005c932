package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/cobra"

	"github.com/hupe1980/mmapbuf"
)

// codec wraps a stream in a compression format.
type codec struct {
	writer func(io.Writer) (io.WriteCloser, error)
	reader func(io.Reader) (io.ReadCloser, error)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

var codecs = map[string]codec{
	"none": {
		writer: func(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil },
		reader: func(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(r), nil },
	},
	"zstd": {
		writer: func(w io.Writer) (io.WriteCloser, error) { return zstd.NewWriter(w) },
		reader: func(r io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return d.IOReadCloser(), nil
		},
	},
	"lz4": {
		writer: func(w io.Writer) (io.WriteCloser, error) { return lz4.NewWriter(w), nil },
		reader: func(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(lz4.NewReader(r)), nil },
	},
}

// codecFor resolves name, falling back to the file extension when name is
// empty.
func codecFor(name, path string) (codec, error) {
	if name == "" {
		switch filepath.Ext(path) {
		case ".zst", ".zstd":
			name = "zstd"
		case ".lz4":
			name = "lz4"
		default:
			name = "none"
		}
	}
	c, ok := codecs[name]
	if !ok {
		return codec{}, fmt.Errorf("%w: unknown codec %q", mmapbuf.ErrInvalidArgument, name)
	}
	return c, nil
}

func (a *app) dumpCmd() *cobra.Command {
	var codecName string
	cmd := &cobra.Command{
		Use:   "dump FILE OUT",
		Short: "Copy the mapped content to OUT, optionally compressed",
		Long: `Copy the mapped content to OUT. The codec (none, zstd or lz4) defaults to
one matching the extension of OUT.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			c, err := codecFor(codecName, args[1])
			if err != nil {
				return err
			}
			buf, err := a.open(cmd, args[0], mmapbuf.ModeRead)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, buf.Close()) }()

			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, f.Close()) }()

			w, err := c.writer(f)
			if err != nil {
				return err
			}
			if _, err := buf.WriteTo(w); err != nil {
				_ = w.Close()
				return err
			}
			return w.Close()
		},
	}
	cmd.Flags().StringVar(&codecName, "codec", "", "none, zstd or lz4")
	return cmd
}

func (a *app) loadCmd() *cobra.Command {
	var codecName string
	cmd := &cobra.Command{
		Use:   "load FILE IN",
		Short: "Replace the content of FILE with IN, optionally decompressing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := codecFor(codecName, args[1])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			r, err := c.reader(f)
			if err != nil {
				return err
			}
			defer r.Close()

			return a.edit(cmd, args[0], mmapbuf.ModeAppend, func(buf *mmapbuf.Buffer) error {
				if err := buf.Replace(0, buf.Len(), nil); err != nil {
					return err
				}
				_, err := io.Copy(buf, r)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&codecName, "codec", "", "none, zstd or lz4")
	return cmd
}
