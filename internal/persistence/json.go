package persistence

import (
	"encoding/json"
	"os"

	"go.uber.org/zap"
	"signaly.chapter42.de/a/internal/data"
	"signaly.chapter42.de/a/internal/logger"
	"signaly.chapter42.de/a/internal/registry"
)

const PersistenceFileName string = "runs.json"

// SaveRuns sichert die Laufhistorie beim Herunterfahren.
func SaveRuns(reg *registry.Registry) {
	runs := reg.List()

	raw, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		logger.Log.Error("Fehler beim Serialisieren der Läufe:", zap.Error(err))
		return
	}

	err = os.WriteFile(PersistenceFileName, raw, 0644)
	if err != nil {
		logger.Log.Error("Fehler beim Speichern der Läufe in die Datei:", zap.String("filename", PersistenceFileName), zap.Error(err))
	} else {
		logger.Log.Info("Läufe in Datei gespeichert:", zap.String("filename", PersistenceFileName), zap.Int("count", len(runs)))
	}
}

// RestoreRuns stellt die Historie des letzten Prozesses wieder her.
// Läufe, die beim Absturz noch liefen, gelten als abgebrochen.
func RestoreRuns(reg *registry.Registry) {
	raw, err := os.ReadFile(PersistenceFileName)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Log.Error("Fehler beim Lesen der Läufe aus der Datei:", zap.String("filename", PersistenceFileName), zap.Error(err))
		}
		return
	}

	var runs []data.Run
	err = json.Unmarshal(raw, &runs)
	if err != nil {
		logger.Log.Error("Fehler beim Deserialisieren der Läufe:", zap.String("filename", PersistenceFileName), zap.Error(err))
		return
	}

	for i := range runs {
		if runs[i].Status == data.RunRunning {
			runs[i].Status = data.RunCanceled
		}
	}

	reg.Replace(runs)
	logger.Log.Info("Läufe aus Datei wiederhergestellt:", zap.String("filename", PersistenceFileName), zap.Int("count", len(runs)))
}
