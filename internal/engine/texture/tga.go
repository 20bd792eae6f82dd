package texture

import (
	"errors"
	"fmt"
	"image"
)

// TGA image types.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

const tgaHeaderSize = 18

var ErrTGATruncated = errors.New("TGA data truncated")

// DecodeTGA decodes an uncompressed or RLE true-color TGA (24 or 32 bpp).
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, ErrTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}
	if bpp != 24 && bpp != 32 {
		return nil, fmt.Errorf("unsupported TGA bit depth %d", bpp)
	}
	if tgaHeaderSize+idLength > len(data) {
		return nil, ErrTGATruncated
	}

	d := tgaDecoder{
		src:  data[tgaHeaderSize+idLength:],
		bpp:  bpp / 8,
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		flip: !topToBottom,
	}
	var err error
	if imageType == TGATypeRLE {
		err = d.decodeRLE()
	} else {
		err = d.decodeRaw()
	}
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

type tgaDecoder struct {
	src  []byte
	pos  int
	bpp  int
	img  *image.RGBA
	next int // next destination pixel in file order
	flip bool
}

func (d *tgaDecoder) total() int {
	b := d.img.Bounds()
	return b.Dx() * b.Dy()
}

// pixel reads one BGR(A) pixel from the stream.
func (d *tgaDecoder) pixel() ([4]byte, error) {
	if d.pos+d.bpp > len(d.src) {
		return [4]byte{}, ErrTGATruncated
	}
	p := d.src[d.pos:]
	d.pos += d.bpp
	c := [4]byte{p[2], p[1], p[0], 255}
	if d.bpp == 4 {
		c[3] = p[3]
	}
	return c, nil
}

// put writes c at the next pixel, bottom-up unless the file is stored top-down.
func (d *tgaDecoder) put(c [4]byte) {
	w := d.img.Bounds().Dx()
	x, y := d.next%w, d.next/w
	if d.flip {
		y = d.img.Bounds().Dy() - 1 - y
	}
	copy(d.img.Pix[d.img.PixOffset(x, y):], c[:])
	d.next++
}

func (d *tgaDecoder) decodeRaw() error {
	for d.next < d.total() {
		c, err := d.pixel()
		if err != nil {
			return err
		}
		d.put(c)
	}
	return nil
}

func (d *tgaDecoder) decodeRLE() error {
	for d.next < d.total() {
		if d.pos >= len(d.src) {
			return ErrTGATruncated
		}
		header := d.src[d.pos]
		d.pos++
		count := int(header&0x7F) + 1

		if header&0x80 != 0 {
			c, err := d.pixel()
			if err != nil {
				return err
			}
			for i := 0; i < count && d.next < d.total(); i++ {
				d.put(c)
			}
			continue
		}
		for i := 0; i < count && d.next < d.total(); i++ {
			c, err := d.pixel()
			if err != nil {
				return err
			}
			d.put(c)
		}
	}
	return nil
}
