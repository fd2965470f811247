package snapshot

import (
	"os"

	"github.com/ivlev/carousel/internal/store"
)

// WriteProject writes a project to a YAML file
func WriteProject(p store.Project, path string) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadProject reads a project from a YAML file
func ReadProject(path string) (store.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Project{}, err
	}

	return Unmarshal(data)
}
