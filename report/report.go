// Package report draws a ramdisk's layout and block usage as a PNG.
package report

import (
	"fmt"
	"io"

	"github.com/fogleman/gg"

	"github.com/mit-pdos/go-ramdisk/layout"
	"github.com/mit-pdos/go-ramdisk/ramdisk"
	"github.com/mit-pdos/go-ramdisk/util"
)

const (
	margin  = 10
	barH    = 40
	cols    = 128
	cell    = 6
	legendH = 20
)

type region struct {
	name    string
	start   uint64
	n       uint64
	r, g, b float64
}

// Size returns the image dimensions Render uses for l.
func Size(l *layout.Layout) (int, int) {
	rows := util.RoundUp(l.NDataBlocks, cols)
	w := 2*margin + cols*cell
	h := margin + barH + legendH + margin + int(rows)*cell + margin
	return w, h
}

// Render writes a PNG with one bar for the arena's regions, drawn to scale,
// and one cell per data block, dark when allocated.
func Render(l *layout.Layout, st ramdisk.Stat, w io.Writer) error {
	if uint64(len(st.Used)) != l.NDataBlocks {
		return fmt.Errorf("report: %d blocks in stat, layout has %d",
			len(st.Used), l.NDataBlocks)
	}
	width, height := Size(l)
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	regions := []region{
		{"super", l.SuperStart, l.SuperLen, 0.8, 0.3, 0.3},
		{"inodes", l.InodeStart, l.InodeLen, 0.3, 0.5, 0.8},
		{"bitmap", l.BitmapStart, l.BitmapLen, 0.9, 0.7, 0.2},
		{"data", l.DataStart, l.DataLen, 0.3, 0.7, 0.4},
	}
	scale := float64(cols*cell) / float64(l.Size)
	for _, rg := range regions {
		x := margin + float64(rg.start)*scale
		// keep tiny regions visible
		rw := float64(rg.n) * scale
		if rw < 2 {
			rw = 2
		}
		dc.SetRGB(rg.r, rg.g, rg.b)
		dc.DrawRectangle(x, margin, rw, barH)
		dc.Fill()
	}

	dc.SetRGB(0, 0, 0)
	legend := fmt.Sprintf("gen %d  %d/%d blocks free  %d tables",
		st.Super.Generation, st.FreeBlocks, l.NDataBlocks, st.Tables)
	dc.DrawString(legend, margin, margin+barH+legendH-5)

	top := float64(margin + barH + legendH + margin)
	for i, used := range st.Used {
		x := margin + float64(i%cols*cell)
		y := top + float64(i/cols*cell)
		if used {
			dc.SetRGB(0.2, 0.2, 0.2)
		} else {
			dc.SetRGB(0.85, 0.95, 0.85)
		}
		dc.DrawRectangle(x, y, cell-1, cell-1)
		dc.Fill()
	}
	return dc.EncodePNG(w)
}
