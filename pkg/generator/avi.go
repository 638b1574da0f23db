// avi.go - Slideshow video writer: an AVI container with a Motion JPEG track.
// Each slide is JPEG-encoded once and its chunk repeated for the slide's
// duration, so players need no codec beyond MJPEG.
package generator

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

// slideshowFPS is the video frame rate. Slides are still images, so one
// frame per second is enough and keeps files small.
const slideshowFPS = 1

// jpegQuality is used for every slide.
const jpegQuality = 92

// riffWriter writes little-endian RIFF fields and keeps the first error.
type riffWriter struct {
	w   io.Writer
	err error
}

func (rw *riffWriter) write(p []byte) {
	if rw.err == nil {
		_, rw.err = rw.w.Write(p)
	}
}

func (rw *riffWriter) fourCC(s string) { rw.write([]byte(s)) }

func (rw *riffWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	rw.write(b[:])
}

func (rw *riffWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	rw.write(b[:])
}

// WriteSlideshow writes slides as an MJPEG AVI showing each slide for
// secondsPerSlide seconds (minimum 1). All slides must share one size.
func WriteSlideshow(w io.Writer, slides []image.Image, secondsPerSlide int) error {
	if len(slides) == 0 {
		return fmt.Errorf("slideshow: no slides")
	}
	secondsPerSlide = max(secondsPerSlide, 1)

	size := slides[0].Bounds().Size()
	frames := make([][]byte, len(slides))
	var maxFrame uint32
	for i, img := range slides {
		if img.Bounds().Size() != size {
			return fmt.Errorf("slideshow: slide %d is %v, want %v", i+1, img.Bounds().Size(), size)
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return fmt.Errorf("encode slide %d: %w", i+1, err)
		}
		frames[i] = buf.Bytes()
		maxFrame = max(maxFrame, uint32(len(frames[i])))
	}

	width, height := uint32(size.X), uint32(size.Y)
	repeat := uint32(secondsPerSlide * slideshowFPS)
	totalFrames := uint32(len(frames)) * repeat

	padded := func(n uint32) uint32 { return n + n%2 }
	moviSize := uint32(4)
	for _, f := range frames {
		moviSize += repeat * (8 + padded(uint32(len(f))))
	}
	idx1Size := 8 + totalFrames*16
	hdrlSize := uint32(4 + 64 + 124) // "hdrl" + avih + strl
	fileSize := 4 + (8 + hdrlSize) + (8 + moviSize) + idx1Size

	rw := &riffWriter{w: w}

	rw.fourCC("RIFF")
	rw.u32(fileSize)
	rw.fourCC("AVI ")

	// === hdrl LIST ===
	rw.fourCC("LIST")
	rw.u32(hdrlSize)
	rw.fourCC("hdrl")

	// === avih (Main AVI Header) ===
	rw.fourCC("avih")
	rw.u32(56)
	rw.u32(1000000 / slideshowFPS)  // microseconds per frame
	rw.u32(maxFrame * slideshowFPS) // max bytes per sec
	rw.u32(0)                       // padding granularity
	rw.u32(0x10)                    // AVIF_HASINDEX
	rw.u32(totalFrames)
	rw.u32(0) // initial frames
	rw.u32(1) // streams
	rw.u32(maxFrame)
	rw.u32(width)
	rw.u32(height)
	for range 4 {
		rw.u32(0) // reserved
	}

	// === strl LIST ===
	rw.fourCC("LIST")
	rw.u32(116) // strh(64) + strf(48) + 4
	rw.fourCC("strl")

	rw.fourCC("strh")
	rw.u32(56)
	rw.fourCC("vids")
	rw.fourCC("MJPG")
	rw.u32(0) // flags
	rw.u16(0) // priority
	rw.u16(0) // language
	rw.u32(0) // initial frames
	rw.u32(1) // scale
	rw.u32(slideshowFPS)
	rw.u32(0) // start
	rw.u32(totalFrames)
	rw.u32(maxFrame)
	rw.u32(0) // quality
	rw.u32(0) // sample size
	rw.u16(0)
	rw.u16(0)
	rw.u16(uint16(width))
	rw.u16(uint16(height))

	// BITMAPINFOHEADER
	rw.fourCC("strf")
	rw.u32(40)
	rw.u32(40)
	rw.u32(width)
	rw.u32(height)
	rw.u16(1)  // planes
	rw.u16(24) // bit count
	rw.fourCC("MJPG")
	rw.u32(width * height * 3)
	rw.u32(0)
	rw.u32(0)
	rw.u32(0)
	rw.u32(0)

	// === movi LIST ===
	rw.fourCC("LIST")
	rw.u32(moviSize)
	rw.fourCC("movi")
	for _, f := range frames {
		for range repeat {
			rw.fourCC("00dc")
			rw.u32(uint32(len(f)))
			rw.write(f)
			if len(f)%2 != 0 {
				rw.write([]byte{0})
			}
		}
	}

	// === idx1 ===
	rw.fourCC("idx1")
	rw.u32(totalFrames * 16)
	offset := uint32(4) // from the start of "movi"
	for _, f := range frames {
		for range repeat {
			rw.fourCC("00dc")
			rw.u32(0x10) // AVIIF_KEYFRAME
			rw.u32(offset)
			rw.u32(uint32(len(f)))
			offset += 8 + padded(uint32(len(f)))
		}
	}

	if rw.err != nil {
		return fmt.Errorf("write slideshow: %w", rw.err)
	}
	return nil
}
