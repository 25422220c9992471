package debuginfos

import (
	"context"
	"crypto/tls"
	"os"
	"runtime"
	"strings"

	"github.com/c2h5oh/datasize"
	log "github.com/sirupsen/logrus"

	"github.com/voluzi/debugpilot/internal/config"
	"github.com/voluzi/debugpilot/internal/environ"
	"github.com/voluzi/debugpilot/internal/utils"
	"github.com/voluzi/debugpilot/pkg/database"
)

func (p *Provider) logEnvironment(ctx context.Context, cfg *config.Config) {
	log.Infof("%s version: %s", p.opts.AppName, p.opts.Version.Version())
	log.Infof("Command line: %s", strings.Join(os.Args, " "))
	log.Infof("Go runtime: %s (%s)", runtime.Version(), runtime.Compiler)
	log.Infof("OS name: %s", runtime.GOOS)
	log.Infof("OS architecture: %s", runtime.GOARCH)
	log.Infof("Locale: %s", environ.GetString("LANG", "unknown"))
	log.Infof("CPUs: %d, GOMAXPROCS: %d", runtime.NumCPU(), runtime.GOMAXPROCS(0))
	if p.opts.Database != nil {
		log.Infof("Datasource URL: sqlite3://%s", p.opts.Database.Path())
	}
	log.Info("Ciphers:")
	log.Info(strings.Join(cipherSuites(), ", "))

	p.logNumberOfTableRows(ctx)
	LogDatabaseFolderSize(cfg.DatabaseFolder())

	if IsRunningInContainer(p.opts.ContainerRoot) {
		log.Info("Apparently run in docker")
	} else {
		log.Info("Apparently not run in docker")
	}
}

func cipherSuites() []string {
	suites := tls.CipherSuites()
	names := make([]string, 0, len(suites))
	for _, s := range suites {
		names = append(names, s.Name)
	}
	return names
}

func (p *Provider) logNumberOfTableRows(ctx context.Context) {
	if p.opts.Database == nil {
		return
	}
	for _, table := range database.KnownTables {
		count, err := p.opts.Database.CountRows(ctx, table)
		if err != nil {
			log.WithError(err).Errorf("Unable to get number of rows in table %s", table)
			continue
		}
		log.Infof("Number of rows in table %s: %d", table, count)
	}
}

// LogDatabaseFolderSize logs the size of dir, or warns when it does not exist.
func LogDatabaseFolderSize(dir string) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Warn("Database folder not found")
		return
	}
	size, err := utils.DirSize(dir)
	if err != nil {
		log.WithError(err).Warn("Unable to determine size of database folder")
		return
	}
	log.Infof("Size of database folder: %s", datasize.ByteSize(size).HumanReadable())
}

func logConfigChanges(cfg *config.Config) {
	diff := cfg.Diff()
	if diff == "" {
		diff = "none"
	}
	log.Infof("Difference in config:\n%s", diff)
	if fp, err := cfg.Fingerprint(); err == nil {
		log.Infof("Config fingerprint: %x", fp)
	}
}
