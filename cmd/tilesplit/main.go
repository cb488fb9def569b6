// Command tilesplit splits a glTF/GLB scene (or, given an IFC source
// file, builds one first) into a sequence of independently-loadable tile
// GLBs windowed by root node count.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ktrn/tilesplit/apperr"
	"github.com/ktrn/tilesplit/gltfdoc"
	"github.com/ktrn/tilesplit/ifcbuild"
	"github.com/ktrn/tilesplit/ifcstep"
	"github.com/ktrn/tilesplit/splitter"
)

func main() {
	inputPath := flag.String("input_path", "", "path to the source .glb or .ifc file")
	outputPath := flag.String("output_path", "", "output base path (without extension) for the generated tile GLBs")
	splitSize := flag.Int("split_size", 100, "root node count per output tile")
	flag.Parse()

	if *inputPath == "" || *outputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: tilesplit --input_path FILE.glb --output_path OUT [--split_size 100]")
		os.Exit(apperr.KindInputIO.ExitCode())
	}

	if err := run(*inputPath, *outputPath, *splitSize); err != nil {
		log.Print(err)
		os.Exit(apperr.ExitCode(err))
	}
}

func run(inputPath, outputPath string, splitSize int) error {
	chunker := splitter.NewChunker(splitter.WithWindowSize(splitSize))

	var doc *gltfdoc.Document
	if strings.EqualFold(filepath.Ext(inputPath), ".ifc") {
		built, err := buildFromIFC(inputPath)
		if err != nil {
			return err
		}
		doc = built
	} else {
		loaded, err := gltfdoc.Load(inputPath)
		if err != nil {
			return apperr.New(apperr.KindInputIO, "cmd/tilesplit", err)
		}
		doc = loaded
	}

	paths, err := chunker.ChunkDocument(doc, outputPath)
	if err != nil {
		return err
	}
	for _, p := range paths {
		log.Printf("wrote %s", p)
	}
	return nil
}

// buildFromIFC runs the IFC-to-GLB build first, matching the source
// dispatcher's own .ifc special case. It shares cmd/ifcbuild's
// unimplemented-geometry-engine stub: this CLI has no IFC BRep kernel of
// its own, so tilesplit over an .ifc input only works once a real
// GeometryEngine is wired in by a caller using this package as a library.
func buildFromIFC(inputPath string) (*gltfdoc.Document, error) {
	model, err := ifcstep.ParseFile(inputPath)
	if err != nil {
		return nil, apperr.New(apperr.KindParse, "cmd/tilesplit", err)
	}
	builder := ifcbuild.NewBuilder(model, unimplementedGeometryEngine{})
	result, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return result.Document, nil
}

type unimplementedGeometryEngine struct{}

func (unimplementedGeometryEngine) Shape(element *ifcstep.Entity) ([]ifcbuild.Geometry, error) {
	return nil, fmt.Errorf("no geometry engine configured: element %s (%s) has no shape generator; "+
		"run this tool as a library with a real ifcbuild.GeometryEngine, not via this CLI's default wiring", element.GlobalID(), element.Type)
}
