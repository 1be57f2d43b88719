package pipeline

import (
	"path/filepath"
	"strings"

	"mediascribe/internal/collect"
	"mediascribe/internal/config"
)

// Inventory counts the inputs available before a run.
type Inventory struct {
	Audio       int `json:"audio"`
	Video       int `json:"video"`
	MusicSource int `json:"music_source"`
	VideoSource int `json:"video_source"`
}

// Empty reports whether there is nothing at all to process.
func (i Inventory) Empty() bool {
	return i.Audio == 0 && i.Video == 0 && i.MusicSource == 0 && i.VideoSource == 0
}

// TakeInventory counts working inputs and, for enabled copy stages, the
// files waiting in the external sources.
func TakeInventory(cfg *config.Config) Inventory {
	inv := Inventory{
		Audio: collect.Count(cfg.Paths.AudioDir, collect.Options{Extensions: cfg.Extensions.Audio}),
		Video: collect.Count(cfg.Paths.VideoDir, collect.Options{Extensions: cfg.Extensions.Video}),
	}
	if cfg.Sources.CopyMusic {
		inv.MusicSource = collect.Count(cfg.Sources.MusicDir, collect.Options{Extensions: cfg.Extensions.Music, Recursive: cfg.Sources.MusicRecursive})
	}
	if cfg.Sources.CopyVideos {
		inv.VideoSource = collect.Count(cfg.Sources.VideosDir, collect.Options{Extensions: cfg.Extensions.Video, Recursive: cfg.Sources.VideosRecursive})
	}
	return inv
}

// Counts holds the number of final artifacts per output directory.
type Counts struct {
	Transcripts int `json:"transcripts"`
	Summaries   int `json:"summaries"`
	Todos       int `json:"todos"`
}

// CountArtifacts counts transcripts (*.txt), summaries (*.md directly in the
// summaries directory) and TODO lists (*_TODOs.md).
func CountArtifacts(cfg *config.Config) Counts {
	counts := Counts{
		Transcripts: collect.Count(cfg.Paths.TranscriptsDir, collect.Options{Extensions: []string{".txt"}}),
	}
	summaries, _ := collect.Files(cfg.Paths.SummariesDir, collect.Options{Extensions: []string{".md"}})
	for _, path := range summaries {
		if !strings.HasSuffix(filepath.Base(path), "_TODOs.md") {
			counts.Summaries++
		}
	}
	todos, _ := collect.Files(cfg.Paths.TodosDir, collect.Options{Extensions: []string{".md"}})
	for _, path := range todos {
		if strings.HasSuffix(filepath.Base(path), "_TODOs.md") {
			counts.Todos++
		}
	}
	return counts
}

// UnsupportedVideos lists recognized video containers in the video
// directory that no stage transforms.
func UnsupportedVideos(cfg *config.Config) []string {
	files, _ := collect.Files(cfg.Paths.VideoDir, collect.Options{Extensions: cfg.Extensions.RecognizedVideo})
	return files
}
