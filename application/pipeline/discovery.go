package pipeline

import (
	"path/filepath"
	"sort"
	"strings"

	"video-translator/domain/media"
)

// Discover lists the eligible videos of inputDir in processing order
func (s *Service) Discover(inputDir string) ([]*media.VideoFile, error) {
	names, err := s.lister.ListFiles(inputDir)
	if err != nil {
		return nil, err
	}

	var eligible []string
	for _, name := range names {
		if media.IsSupported(name) {
			eligible = append(eligible, name)
		}
	}
	SortNames(eligible)

	videos := make([]*media.VideoFile, 0, len(eligible))
	for _, name := range eligible {
		v, err := media.NewVideoFile(filepath.Join(inputDir, name))
		if err != nil {
			continue
		}
		videos = append(videos, v)
	}
	return videos, nil
}

// SortNames orders filenames case-insensitively, breaking ties by byte order,
// so b.mp4, A.mov, c.mkv becomes A.mov, b.mp4, c.mkv on every platform.
func SortNames(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li != lj {
			return li < lj
		}
		return names[i] < names[j]
	})
}
