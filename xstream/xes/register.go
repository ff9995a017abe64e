// SPDX-License-Identifier: Apache-2.0

package xes

import (
	"context"
	"os"
	"time"

	flow "github.com/pm4rs/xesflow"
	"github.com/pm4rs/xesflow/xstream"
	"github.com/pm4rs/xesflow/xstream/plugin"
)

// openRetrying opens path for reading, retrying a handful of times with a
// short fixed backoff: on network filesystems the file a graph was just
// handed can briefly be unreadable right after creation.
func openRetrying(path string) (*os.File, error) {
	var f *os.File
	step := flow.Retry(func(_ context.Context, p string) (err error) {
		f, err = os.Open(p)
		return err
	}, flow.UpTo(3), flow.FixedBackoff(10*time.Millisecond))
	if err := step(context.Background(), path); err != nil {
		return nil, err
	}
	return f, nil
}

// createRetrying is openRetrying's counterpart for the write side.
func createRetrying(path string) (*os.File, error) {
	var f *os.File
	step := flow.Retry(func(_ context.Context, p string) (err error) {
		f, err = os.Create(p)
		return err
	}, flow.UpTo(3), flow.FixedBackoff(10*time.Millisecond))
	if err := step(context.Background(), path); err != nil {
		return nil, err
	}
	return f, nil
}

// init registers the XES file stages into the process-wide default
// registry as a side effect of importing this package, the same
// blank-import-to-register pattern database/sql drivers use, so that any
// program wiring a Graph against plugin.Default() gets XesReader/XesWriter
// without a separate bootstrap call.
func init() {
	RegisterXesStages(plugin.Default())
}

// RegisterXesStages installs the XesReader and XesWriter stages into r. It
// lives here, rather than in xstream/plugin, so plugin itself does not need
// to depend on this package's file-handling and XML machinery.
func RegisterXesStages(r *plugin.Registry) {
	r.Register("XesReader", "reads an XES event log from a file", plugin.NewStreamFactory(
		plugin.Declaration{}.Attribute("path", "filesystem path of the XES file to read"),
		func(p *plugin.Parameters) (xstream.Stream, error) {
			pathAttr, err := p.AcquireAttribute("path")
			if err != nil {
				return nil, err
			}
			path, err := xstream.AsString(pathAttr)
			if err != nil {
				return nil, err
			}
			f, err := openRetrying(path)
			if err != nil {
				return nil, xstream.WrapXML(err)
			}
			return &closingReader{Reader: NewReader(f), file: f}, nil
		},
	))

	r.Register("XesWriter", "writes an XES event log to a file", plugin.NewSinkFactory(
		plugin.Declaration{}.
			Attribute("path", "filesystem path of the XES file to write").
			DefaultAttr("indent", "indentation string used for pretty-printing", xstream.StringValue("\t")),
		func(p *plugin.Parameters) (xstream.Sink, error) {
			pathAttr, err := p.AcquireAttribute("path")
			if err != nil {
				return nil, err
			}
			path, err := xstream.AsString(pathAttr)
			if err != nil {
				return nil, err
			}
			indentAttr, err := p.AcquireAttribute("indent")
			if err != nil {
				return nil, err
			}
			indent, err := xstream.AsString(indentAttr)
			if err != nil {
				return nil, err
			}
			f, err := createRetrying(path)
			if err != nil {
				return nil, xstream.WrapXML(err)
			}
			return &closingWriter{Writer: NewWriter(f, indent), file: f}, nil
		},
	))
}

// closingReader closes its backing file once the underlying Reader reports
// EOF or an error, so a graph built from XesReader never leaks file handles.
type closingReader struct {
	*Reader
	file   *os.File
	closed bool
}

func (c *closingReader) Next() xstream.Result {
	r := c.Reader.Next()
	if !c.closed && (r.EOF || r.Err != nil) {
		c.closed = true
		c.file.Close()
	}
	return r
}

// closingWriter closes its backing file on OnClose, after the XML writer
// has flushed the closing </log> tag.
type closingWriter struct {
	*Writer
	file *os.File
}

func (c *closingWriter) OnClose() error {
	flush := flow.RecoverPanics(func(context.Context, *closingWriter) error {
		return c.Writer.OnClose()
	})
	if err := flush(context.Background(), c); err != nil {
		c.file.Close()
		return err
	}
	return c.file.Close()
}

var (
	_ xstream.Stream = (*closingReader)(nil)
	_ xstream.Sink   = (*closingWriter)(nil)
)
