package ports

import "tinyprotocol/internal/types"

type ProjectSpecPort interface {
	LoadProject(path string) (types.ProjectSpec, error)
}
