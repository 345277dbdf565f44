package cmd

import (
	"fmt"
	"io"

	"github.com/pithecene-io/splimer/cli/render"
	"github.com/pithecene-io/splimer/engine"
)

// linePrinter writes one line per completed fragment:
//
//	fragment 2 written: 2.0 KiB / 9.8 KiB
type linePrinter struct {
	w    io.Writer
	verb string
}

func (p *linePrinter) FragmentDone(pr engine.Progress) {
	done := render.Bytes(pr.BytesDone)
	if pr.BytesTotal > 0 {
		done += " / " + render.Bytes(pr.BytesTotal)
	}
	fmt.Fprintf(p.w, "fragment %d %s: %s\n", pr.Index, p.verb, done)
}
