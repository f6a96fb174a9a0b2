// Package meta loads configuration and definition documents from any afs
// supported location, expanding ${env.KEY} references.
package meta

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
)

const envPrefix = "${env."

// Service downloads documents.
type Service struct {
	fs      afs.Service
	options []storage.Option
}

// New creates a meta service; options are passed to every download, e.g. an
// embed.FS.
func New(fs afs.Service, options ...storage.Option) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs, options: options}
}

// Download returns the document at URL with environment references expanded.
func (s *Service) Download(ctx context.Context, URL string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL, s.options...)
	if err != nil {
		return nil, fmt.Errorf("failed to download %v: %w", URL, err)
	}
	return []byte(ExpandEnv(string(data))), nil
}

// ExpandEnv replaces ${env.KEY} with the value of KEY, or "" when unset.
// References with characters outside [A-Za-z0-9_] or without a closing brace
// are kept verbatim.
func ExpandEnv(text string) string {
	if !strings.Contains(text, envPrefix) {
		return text
	}
	var sb strings.Builder
	for {
		start := strings.Index(text, envPrefix)
		if start < 0 {
			sb.WriteString(text)
			return sb.String()
		}
		sb.WriteString(text[:start])
		rest := text[start+len(envPrefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			sb.WriteString(text[start:])
			return sb.String()
		}
		key := rest[:end]
		if !isEnvKey(key) {
			sb.WriteString(envPrefix)
			text = rest
			continue
		}
		sb.WriteString(os.Getenv(key))
		text = rest[end+1:]
	}
}

func isEnvKey(key string) bool {
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}
