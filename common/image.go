package common

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"slices"

	"github.com/gen2brain/avif"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

const (
	ImageFormatAvif = "avif"
	ImageFormatBmp  = "bmp"
	ImageFormatJpeg = "jpeg"
	ImageFormatPng  = "png"
	ImageFormatTiff = "tiff"
)

var AllImageFormats = []string{
	ImageFormatAvif,
	ImageFormatBmp,
	ImageFormatJpeg,
	ImageFormatPng,
	ImageFormatTiff,
}

// EncodeImage writes `img` to `output` in given format, unknown formats fall
// back to PNG. Returns file extension of the format actually used.
func EncodeImage(img image.Image, output io.Writer, outputFormat string) (string, error) {
	var err error
	var outputExt string
	switch outputFormat {
	case ImageFormatAvif:
		err = avif.Encode(output, img)
		outputExt = ImageFormatAvif
	case ImageFormatBmp:
		err = bmp.Encode(output, img)
		outputExt = ImageFormatBmp
	case ImageFormatJpeg:
		err = jpeg.Encode(output, img, &jpeg.Options{Quality: 95})
		outputExt = ImageFormatJpeg
	case ImageFormatTiff:
		err = tiff.Encode(output, img, nil)
		outputExt = ImageFormatTiff
	default:
		err = png.Encode(output, img)
		outputExt = ImageFormatPng
	}

	if err != nil {
		return "", fmt.Errorf("failed to encode image as %s: %s", outputExt, err)
	}

	return outputExt, nil
}

// SaveImageAs encodes image in given format and saves it to `stub` with the
// format's extension appended. Path of written file is returned.
func SaveImageAs(img image.Image, stub string, outputFormat string) (string, error) {
	ext := outputFormat
	if !slices.Contains(AllImageFormats, ext) {
		ext = ImageFormatPng
	}
	outputName := stub + "." + ext

	file, err := os.Create(outputName)
	if err != nil {
		return "", fmt.Errorf("failed to create output image file %s: %s", outputName, err)
	}
	defer file.Close()

	bufWriter := bufio.NewWriter(file)

	if _, err = EncodeImage(img, bufWriter, outputFormat); err != nil {
		return "", fmt.Errorf("failed to save image %s: %s", outputName, err)
	}

	if err = bufWriter.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush image %s: %s", outputName, err)
	}

	return outputName, nil
}
