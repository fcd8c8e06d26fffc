package statistic

import (
	"fmt"
	"github.com/RobinLinde/MapComplete-MQTT/internal/models"
	"github.com/RobinLinde/MapComplete-MQTT/internal/providers"
	"github.com/RobinLinde/MapComplete-MQTT/internal/statistic/interfaces"
	json "github.com/goccy/go-json"
	"os"
)

// FileManager persists the theme cache so colors survive restarts.
type FileManager struct {
	state      *models.DailyState
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, state *models.DailyState, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		state:      state,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	if fileName == "" {
		return nil
	}
	snapshot := models.ThemeSnapshot{
		Version: models.SnapshotVersion,
		Themes:  f.state.ThemeCache.Snapshot(),
	}

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores the theme cache. A missing file leaves the cache untouched.
func (f *FileManager) LoadFromFile(fileName string) error {
	if fileName == "" {
		return nil
	}
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return fmt.Errorf("decompressing %s: %w", fileName, err)
	}

	var snapshot models.ThemeSnapshot
	if err := json.Unmarshal(decompressedData, &snapshot); err != nil {
		return fmt.Errorf("decoding %s: %w", fileName, err)
	}
	if snapshot.Version != models.SnapshotVersion {
		f.logger.Warnf(providers.TypeApp, "Ignoring theme snapshot with version %d, expected %d", snapshot.Version, models.SnapshotVersion)
		return nil
	}

	f.state.ThemeCache.PutData(snapshot.Themes)
	f.logger.Infof(providers.TypeApp, "Restored %d themes from %s", f.state.ThemeCache.Len(), fileName)
	return nil
}
