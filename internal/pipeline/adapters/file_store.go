package adapters

import (
	"github.com/JulianoL13/app-config-aggregator/internal/artifact"
	"github.com/JulianoL13/app-config-aggregator/internal/pipeline"
)

// FileStore keeps the artifact, and optionally the plain list, on disk.
type FileStore struct {
	path          string
	listPath      string
	markers       []string
	defaultHeader []string
}

func NewFileStore(path, listPath string, markers, defaultHeader []string) *FileStore {
	return &FileStore{
		path:          path,
		listPath:      listPath,
		markers:       markers,
		defaultHeader: defaultHeader,
	}
}

// Read never returns empty sections: on error the defaults come back with it.
func (s *FileStore) Read() (artifact.Sections, error) {
	sections, err := artifact.Read(s.path, s.markers, s.defaultHeader)
	if err != nil {
		return artifact.DefaultSections(s.defaultHeader), err
	}
	return sections, nil
}

func (s *FileStore) Write(sections artifact.Sections, links []string) error {
	return artifact.Write(s.path, sections, links)
}

func (s *FileStore) WriteList(links []string) error {
	if s.listPath == "" {
		return nil
	}
	return artifact.WriteList(s.listPath, links)
}

var _ pipeline.ArtifactStore = (*FileStore)(nil)
