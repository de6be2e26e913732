package photos

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/bobmcallan/answerd/internal/common"
)

// yearPattern matches a four digit year in a query.
var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// YearFromQuery extracts the first four digit year, or zero when the
// query names none.
func YearFromQuery(query string) int {
	m := yearPattern.FindString(query)
	if m == "" {
		return 0
	}
	year, _ := strconv.Atoi(m)
	return year
}

// imageExtensions lists the file types scanned for EXIF data.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
}

// Scanner counts photos in a library directory by the year they were
// taken, read from EXIF capture dates.
type Scanner struct {
	dir    string
	logger *common.Logger
}

// NewScanner builds a scanner over the photo library directory.
func NewScanner(dir string, logger *common.Logger) *Scanner {
	return &Scanner{dir: dir, logger: logger}
}

// CountByYear walks the library and counts photos whose EXIF capture
// date falls in the given year. Files without usable EXIF data are
// skipped.
func (s *Scanner) CountByYear(year int) (int, error) {
	count := 0
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		taken, err := s.captureTime(path)
		if err != nil {
			s.logger.Debug().Err(err).Str("path", path).Msg("Skipping photo without capture date")
			return nil
		}
		if taken.Year() == year {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("photos: walk %s: %w", s.dir, err)
	}
	return count, nil
}

func (s *Scanner) captureTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	meta, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, err
	}
	return meta.DateTime()
}

// Resolve answers a photo count question. A query without a year asks
// for one back.
func (s *Scanner) Resolve(query string) (string, error) {
	year := YearFromQuery(query)
	if year == 0 {
		return "Which year should I look at? Try asking about photos from a specific year.", nil
	}

	count, err := s.CountByYear(year)
	if err != nil {
		return "", err
	}
	s.logger.Debug().Int("year", year).Int("count", count).Msg("Photo count resolved")

	switch count {
	case 0:
		return fmt.Sprintf("I found no photos from %d in your library.", year), nil
	case 1:
		return fmt.Sprintf("You took 1 photo in %d.", year), nil
	default:
		return fmt.Sprintf("You took %d photos in %d.", count, year), nil
	}
}
