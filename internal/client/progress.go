package client

import (
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// ByteBar draws a byte counting bar for one transfer. The bar is added
// lazily by Wrap, once the size is known.
type ByteBar struct {
	progress *mpb.Progress
	name     string
	bar      *mpb.Bar
}

func NewByteBar(progress *mpb.Progress, name string) *ByteBar {
	return &ByteBar{progress: progress, name: name}
}

// Wrap matches the wrap hooks of Client.Transcribe and whisper_cpp.DownloadModel.
// total may be -1 when the size is unknown.
func (b *ByteBar) Wrap(r io.Reader, total int64) io.Reader {
	b.bar = b.progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(b.name+" ", decor.WC{C: decor.DindentRight}),
			decor.Counters(decor.SizeB1024(0), "% .1f / % .1f", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.1f", decor.WCSyncSpace),
			decor.OnComplete(
				decor.EwmaSpeed(decor.SizeB1024(0), "% .1f", 30, decor.WCSyncSpace), " ✓",
			),
		),
	)
	return b.bar.ProxyReader(r)
}

// Finish completes the bar, or aborts it when err is set. It is a no-op if
// Wrap was never called.
func (b *ByteBar) Finish(err error) {
	if b.bar == nil {
		return
	}
	if err != nil {
		b.bar.Abort(false)
		return
	}
	b.bar.SetTotal(-1, true)
}
