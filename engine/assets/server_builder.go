package assets

import "io/fs"

// ServerBuilderOption is a functional option for configuring a Server.
type ServerBuilderOption func(*server)

// WithFS sets the file system images are read from.
//
// Parameters:
//   - fsys: the file system, typically os.DirFS of the asset directory
//
// Returns:
//   - ServerBuilderOption: a function that sets the file system
func WithFS(fsys fs.FS) ServerBuilderOption {
	return func(s *server) {
		s.fsys = fsys
	}
}

// WithSize resamples every decoded image to a size by size square. 0 keeps the source size.
func WithSize(size uint32) ServerBuilderOption {
	return func(s *server) {
		s.size = size
	}
}

// WithWorkers sets the number of decode workers. Defaults to 2.
func WithWorkers(n int) ServerBuilderOption {
	return func(s *server) {
		s.workers = n
	}
}
