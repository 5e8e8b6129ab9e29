package vectorstore

import (
	"encoding/gob"
	"os"

	"financial-qa/internal/models"

	"github.com/rs/zerolog/log"
)

// Persisted artifacts: <path>.index holds the similarity index structure,
// <path>.docs the parallel texts and metadata. Both must be present for a
// load to succeed.

type indexArtifact struct {
	Dimension int
	Vectors   [][]float32
}

type docsArtifact struct {
	Texts    []string
	Metadata []models.Metadata
}

// Save writes both artifacts. A store without an index is a no-op with a
// diagnostic, not an error.
func (s *Store) Save(path string) error {
	if s.index == nil {
		log.Warn().Msg("No index to save")
		return nil
	}

	if err := writeGob(path+".index", indexArtifact{
		Dimension: s.index.dimension,
		Vectors:   s.index.vectors,
	}); err != nil {
		return err
	}
	if err := writeGob(path+".docs", docsArtifact{
		Texts:    s.texts,
		Metadata: s.metadata,
	}); err != nil {
		return err
	}

	log.Info().Str("path", path).Int("documents", len(s.texts)).Msg("Vector store saved")
	return nil
}

// Load restores a previously saved store. It reports success as a
// boolean: missing files or a decode failure leave the prior state
// untouched and return false.
func (s *Store) Load(path string) bool {
	indexPath := path + ".index"
	docsPath := path + ".docs"
	if _, err := os.Stat(indexPath); err != nil {
		log.Warn().Str("path", path).Msg("Vector store files not found")
		return false
	}
	if _, err := os.Stat(docsPath); err != nil {
		log.Warn().Str("path", path).Msg("Vector store files not found")
		return false
	}

	var index indexArtifact
	if err := readGob(indexPath, &index); err != nil {
		log.Error().Err(err).Str("path", indexPath).Msg("Error loading vector store")
		return false
	}
	var docs docsArtifact
	if err := readGob(docsPath, &docs); err != nil {
		log.Error().Err(err).Str("path", docsPath).Msg("Error loading vector store")
		return false
	}

	s.index = &flatIndex{dimension: index.Dimension, vectors: index.Vectors}
	s.texts = docs.Texts
	s.metadata = docs.Metadata

	log.Info().Str("path", path).Int("documents", len(s.texts)).Msg("Vector store loaded")
	return true
}

// Remove deletes both persisted artifacts. Artifacts that do not exist
// are not an error, so clearing a never-saved store succeeds.
func (s *Store) Remove(path string) error {
	for _, p := range []string{path + ".index", path + ".docs"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	log.Info().Str("path", path).Msg("Vector store artifacts removed")
	return nil
}

func writeGob(path string, value any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(value); err != nil {
		return err
	}
	return f.Sync()
}

func readGob(path string, value any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(value)
}
