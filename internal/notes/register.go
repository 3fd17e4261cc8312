package notes

import (
	"log/slog"

	"github.com/ARTM2000/grove"
)

// ServiceToken resolves the request-scoped [Service].
const ServiceToken = "notes"

var (
	SettingsKey   = grove.NewKey[*Settings]("notes.Settings")
	LoggerKey     = grove.NewKey[*slog.Logger]("notes.Logger")
	DBKey         = grove.NewKey[*DB]("notes.DB")
	UnitOfWorkKey = grove.NewKey[*UnitOfWork]("notes.UnitOfWork")
	RepoKey       = grove.NewKey[*Repo]("notes.Repo")
	ServiceKey    = grove.NewKey[Service]("notes.Service")
)

// Register declares the notes graph in reg.
func Register(reg *grove.Registry, settings *Settings, logger *slog.Logger) error {
	if err := grove.Value(reg, SettingsKey, settings); err != nil {
		return err
	}
	if err := grove.Value(reg, LoggerKey, logger); err != nil {
		return err
	}
	if err := grove.Provide2(reg, DBKey, grove.Of(SettingsKey), grove.Of(LoggerKey), OpenDB); err != nil {
		return err
	}
	if err := grove.Provide1(reg, UnitOfWorkKey, grove.Of(DBKey), NewUnitOfWork,
		grove.WithScope(grove.Request)); err != nil {
		return err
	}
	if err := grove.Provide1(reg, RepoKey, grove.Of(UnitOfWorkKey), NewRepo,
		grove.WithScope(grove.Request)); err != nil {
		return err
	}
	return grove.Provide2(reg, ServiceKey, grove.Of(RepoKey), grove.Of(LoggerKey), NewService,
		grove.WithScope(grove.Request), grove.WithToken(ServiceToken))
}
