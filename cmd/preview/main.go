// Command preview renders one PNG snapshot of a GLB tile's geometry, for
// spot-checking a tile's contents without a full scene viewer.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ktrn/tilesplit/apperr"
	"github.com/ktrn/tilesplit/preview"
)

func main() {
	input := flag.String("input", "", "path to the source GLB tile")
	output := flag.String("output", "", "path to write the rendered PNG")
	focalLength := flag.Float64("focal_length", 30, "camera lens focal length in mm (longer narrows the field of view)")
	distance := flag.Float64("distance", 1.3, "camera distance as a multiple of the model's largest bounding-box dimension")
	rotationH := flag.Float64("rotation_h", 0, "horizontal orbit in degrees around the model center; positive rotates clockwise as seen from above")
	rotationV := flag.Float64("rotation_v", 0, "vertical orbit in degrees around the model center; positive rotates upward")
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "usage: preview --input TILE.glb --output OUT.png [--focal_length 30] [--distance 1.3] [--rotation_h 0] [--rotation_v 0]")
		os.Exit(apperr.KindInputIO.ExitCode())
	}

	err := preview.Render(*input, *output, float32(*focalLength), float32(*distance), float32(*rotationH), float32(*rotationV))
	if err != nil {
		log.Print(err)
		os.Exit(apperr.ExitCode(err))
	}
	log.Printf("wrote %s", *output)
}
