package cmd

import (
	"fmt"
	"os"

	"ordertracker/internal/core/application/courierstatus"
	"ordertracker/internal/core/domain/model/stage"

	toml "github.com/pelletier/go-toml/v2"
)

// CatalogFile is the TOML seed file for the stage registry and, optionally,
// the courier status vocabulary:
//
//	[[stage]]
//	code = "pending"
//	display_name = "Pending"
//	position = 0
//
//	[[courier_status]]
//	internal = "returned"
//	external = "returned_to_sender"
type CatalogFile struct {
	Stages          []CatalogStage         `toml:"stage"`
	CourierStatuses []CatalogCourierStatus `toml:"courier_status"`
}

type CatalogStage struct {
	Code        string `toml:"code"`
	DisplayName string `toml:"display_name"`
	Position    int    `toml:"position"`
}

type CatalogCourierStatus struct {
	Internal string `toml:"internal"`
	External string `toml:"external"`
}

func LoadCatalogFile(path string) (CatalogFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return CatalogFile{}, fmt.Errorf("read catalog file: %w", err)
	}
	return ParseCatalogFile(raw)
}

func ParseCatalogFile(raw []byte) (CatalogFile, error) {
	var file CatalogFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return CatalogFile{}, fmt.Errorf("parse catalog file: %w", err)
	}
	return file, nil
}

// StageList converts the [[stage]] entries into domain stages.
func (f CatalogFile) StageList() ([]stage.Stage, error) {
	stages := make([]stage.Stage, 0, len(f.Stages))
	for i, s := range f.Stages {
		st, err := stage.NewStage(s.Code, s.DisplayName, s.Position)
		if err != nil {
			return nil, fmt.Errorf("stage entry %d: %w", i, err)
		}
		stages = append(stages, st)
	}
	return stages, nil
}

// Vocabulary returns the file's courier status table, or the built-in one
// when the file has none.
func (f CatalogFile) Vocabulary() (*courierstatus.Vocabulary, error) {
	if len(f.CourierStatuses) == 0 {
		return courierstatus.Default(), nil
	}

	mappings := make([]courierstatus.Mapping, len(f.CourierStatuses))
	for i, m := range f.CourierStatuses {
		mappings[i] = courierstatus.Mapping{Internal: m.Internal, External: m.External}
	}
	return courierstatus.NewVocabulary(mappings)
}
