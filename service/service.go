package service

import (
	"awi/config"
	"awi/database"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Services is the service container handed to the HTTP layer
type Services struct {
	FolderSettings *FolderSettingsService
	Reindex        *ReindexService
}

// InitServices builds all services over db using settings
func InitServices(db *gorm.DB, settings *config.Config, opts ...ReindexOption) (*Services, error) {
	reindexSvc, err := NewReindexService(ReindexOptionsFromConfig(settings), database.NewKeyValueStore(db), opts...)
	if err != nil {
		return nil, err
	}

	return &Services{
		FolderSettings: NewFolderSettingsService(db),
		Reindex:        reindexSvc,
	}, nil
}

// ReindexOptionsFromConfig maps configuration onto reindex options
func ReindexOptionsFromConfig(settings *config.Config) ReindexOptions {
	return ReindexOptions{
		Command:     strings.Fields(settings.ReindexCommand),
		Service:     settings.ReindexService,
		Interpreter: settings.ReindexInterpreter,
		Script:      settings.ReindexScript,
		FitsRoot:    settings.FitsRoot,
		Timeout:     time.Duration(settings.ReindexTimeoutSeconds) * time.Second,
	}
}
