package stdout

import (
	"fmt"
	"io"
	"os"

	"boxlink/internal/publishers"
)

type Publisher struct {
	Out io.Writer
}

func (p *Publisher) Publish(name string, doc []byte, config map[string]interface{}) error {
	payload, err := publishers.Payload(doc, config)
	if err != nil {
		return err
	}

	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "========== %s ==========\n", publishers.ExportFileName(name))
	fmt.Fprintln(out, string(payload))
	fmt.Fprintln(out, "============================================")
	return nil
}

func init() {
	publishers.Register("stdout", func() publishers.Publisher { return &Publisher{} })
}
