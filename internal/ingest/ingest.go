// Package ingest turns uploaded files and lecture videos into a searchable
// index for one session.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"learnassess/internal/documents"
	"learnassess/internal/index"
	"learnassess/internal/youtube"
)

var ErrNoContent = errors.New("no usable content in uploaded material")

// Upload is one file received from the client.
type Upload struct {
	Name string
	Data []byte
}

type Extractor interface {
	Extract(ctx context.Context, name string, data []byte) (documents.Document, error)
}

type Transcripts interface {
	Fetch(ctx context.Context, url, lang string) (youtube.Transcript, error)
}

// Archiver keeps a copy of the original upload. It may be nil.
type Archiver interface {
	Upload(ctx context.Context, sessionID uuid.UUID, filename string, content io.Reader) (string, error)
}

// Skipped names a source that produced nothing and why.
type Skipped struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// Summary describes what went into an index.
type Summary struct {
	Sources  []string  `json:"sources"`
	Skipped  []Skipped `json:"skipped,omitempty"`
	Chunks   int       `json:"chunks"`
	Archived []string  `json:"archived,omitempty"`
}

type Settings struct {
	ChunkSize    int
	ChunkOverlap int
	Dimension    int
	Lang         string
}

type Ingestor struct {
	extractor   Extractor
	transcripts Transcripts
	archiver    Archiver
	embedder    index.Embedder
	settings    Settings
	logger      *zap.Logger
}

func New(extractor Extractor, transcripts Transcripts, archiver Archiver, embedder index.Embedder, settings Settings, logger *zap.Logger) *Ingestor {
	return &Ingestor{
		extractor:   extractor,
		transcripts: transcripts,
		archiver:    archiver,
		embedder:    embedder,
		settings:    settings,
		logger:      logger,
	}
}

// Build extracts, chunks and embeds every source. A source that fails is
// skipped and reported; Build fails only when nothing usable remains.
func (in *Ingestor) Build(ctx context.Context, sessionID uuid.UUID, uploads []Upload, videoURLs []string) (*index.Flat, Summary, error) {
	log := in.logger.With(zap.String("session", sessionID.String()))
	var (
		sum    Summary
		chunks []index.Chunk
	)
	add := func(source, text string) {
		pieces, err := documents.Chunk(text, in.settings.ChunkSize, in.settings.ChunkOverlap)
		if err != nil {
			sum.Skipped = append(sum.Skipped, Skipped{Source: source, Reason: err.Error()})
			return
		}
		if len(pieces) == 0 {
			sum.Skipped = append(sum.Skipped, Skipped{Source: source, Reason: "no text"})
			return
		}
		for _, p := range pieces {
			chunks = append(chunks, index.Chunk{Source: source, Text: p})
		}
		sum.Sources = append(sum.Sources, source)
	}

	for _, u := range uploads {
		if err := ctx.Err(); err != nil {
			return nil, Summary{}, err
		}
		doc, err := in.extractor.Extract(ctx, u.Name, u.Data)
		if err != nil {
			log.Warn("skipping upload", zap.String("file", u.Name), zap.Error(err))
			sum.Skipped = append(sum.Skipped, Skipped{Source: u.Name, Reason: err.Error()})
			continue
		}
		add(doc.Name, doc.Text)
		if in.archiver != nil {
			url, err := in.archiver.Upload(ctx, sessionID, u.Name, bytes.NewReader(u.Data))
			if err != nil {
				log.Warn("archiving upload failed", zap.String("file", u.Name), zap.Error(err))
			} else {
				sum.Archived = append(sum.Archived, url)
			}
		}
	}

	for _, v := range videoURLs {
		if err := ctx.Err(); err != nil {
			return nil, Summary{}, err
		}
		if in.transcripts == nil {
			sum.Skipped = append(sum.Skipped, Skipped{Source: v, Reason: "video transcripts disabled"})
			continue
		}
		t, err := in.transcripts.Fetch(ctx, v, in.settings.Lang)
		if err != nil {
			log.Warn("skipping video", zap.String("url", v), zap.Error(err))
			sum.Skipped = append(sum.Skipped, Skipped{Source: v, Reason: err.Error()})
			continue
		}
		name := t.Title
		if name == "" {
			name = "youtube:" + t.VideoID
		}
		add(name, t.Text())
	}

	if len(chunks) == 0 {
		return nil, sum, ErrNoContent
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := in.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, sum, fmt.Errorf("embedding material: %w", err)
	}
	idx := index.NewFlat(in.settings.Dimension)
	if err := idx.Add(chunks, vectors); err != nil {
		return nil, sum, err
	}
	sum.Chunks = idx.Len()
	log.Info("built index", zap.Int("sources", len(sum.Sources)), zap.Int("chunks", sum.Chunks), zap.Int("skipped", len(sum.Skipped)))
	return idx, sum, nil
}
