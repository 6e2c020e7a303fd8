package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"signaly.chapter42.de/a/internal/feed"
	"signaly.chapter42.de/a/internal/logger"
)

// Store legt pro Lauf eine JSON-Datei unter dem History-Verzeichnis ab,
// benannt nach dem Payload-Timestamp.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Write(p feed.Payload) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	raw, err := json.Marshal(p)
	if err != nil {
		logger.Log.Error("Fehler beim Serialisieren des Payloads:", zap.Error(err))
		return err
	}

	path := filepath.Join(s.dir, p.Timestamp+".json")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		logger.Log.Error("Fehler beim Schreiben der History-Datei:", zap.String("path", path), zap.Error(err))
		return err
	}

	logger.Log.Debug("History-Datei geschrieben:", zap.String("path", path))
	return nil
}
