package debuginfos

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	prom "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"

	"github.com/voluzi/debugpilot/internal/config"
	"github.com/voluzi/debugpilot/internal/utils"
)

var extraLogFiles = []string{"wrapper.log", "system.err.log", "system.out.log"}

// Provider assembles debug infos archives.
type Provider struct {
	config ConfigProvider
	opts   *Options

	buildLock sync.Mutex
	// keyed by archive format
	cache *ttlcache.Cache[string, *Archive]
}

// Archive is a built debug infos archive together with how it should be served.
type Archive struct {
	Data        []byte
	FileName    string
	ContentType string
}

func New(cfg ConfigProvider, opts ...Option) *Provider {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	ttl := options.CacheTTL
	if ttl == 0 {
		ttl = time.Duration(cfg.Current().Debug.ArchiveCacheSeconds) * time.Second
	}

	p := &Provider{config: cfg, opts: options}
	if ttl > 0 {
		p.cache = ttlcache.New(
			ttlcache.WithTTL[string, *Archive](ttl),
			ttlcache.WithDisableTouchOnHit[string, *Archive](),
		)
	}
	return p
}

// ArchiveFileName is the name offered to users downloading the archive.
func (p *Provider) ArchiveFileName() string {
	return p.archiveFileName(p.config.Current().Debug.ArchiveFormat)
}

func (p *Provider) archiveFileName(format string) string {
	return fmt.Sprintf("%s-debuginfos-%s%s", p.opts.AppName, time.Now().Format("20060102-150405"), archiveExtension(format))
}

// GetDebugInfosArchive returns the archive content. Archives built within the
// cache TTL are reused.
func (p *Provider) GetDebugInfosArchive(ctx context.Context) ([]byte, error) {
	archive, err := p.GetArchive(ctx)
	if err != nil {
		return nil, err
	}
	return archive.Data, nil
}

// GetArchive returns the archive in the currently configured format. Archives
// built within the cache TTL are reused as long as the format did not change.
func (p *Provider) GetArchive(ctx context.Context) (*Archive, error) {
	p.buildLock.Lock()
	defer p.buildLock.Unlock()

	cfg := p.config.Current()
	format := cfg.Debug.ArchiveFormat
	if p.cache != nil {
		if item := p.cache.Get(format); item != nil {
			log.Debug("returning cached debug infos")
			return item.Value(), nil
		}
	}

	path, err := p.createArchive(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read debug infos archive")
	}
	log.WithField("sha256", utils.Sha256Bytes(data)).Debug("read debug infos archive")

	archive := &Archive{
		Data:        data,
		FileName:    p.archiveFileName(format),
		ContentType: archiveContentType(format),
	}
	if p.cache != nil {
		p.cache.Set(format, archive, ttlcache.DefaultTTL)
	}
	return archive, nil
}

// CreateDebugInfosArchive logs an environment report and writes the archive
// to a new temporary file whose path is returned. The caller owns the file.
func (p *Provider) CreateDebugInfosArchive(ctx context.Context) (string, error) {
	return p.createArchive(ctx, p.config.Current())
}

func (p *Provider) createArchive(ctx context.Context, cfg *config.Config) (string, error) {
	log.Info("Creating debug infos")
	p.logEnvironment(ctx, cfg)

	anonymizedConfig, err := cfg.AnonymizedYAML()
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize config")
	}
	logConfigChanges(cfg)

	families := p.gather()
	logMetrics(families)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	anonymizer := p.anonymizer(cfg)
	logContent, err := p.logProvider(cfg).Log()
	if err != nil {
		log.WithError(err).Warn("unable to read log for debug infos")
	}

	name := fmt.Sprintf("%s-debuginfos-%s%s", p.opts.AppName, uuid.NewString(), archiveExtension(cfg.Debug.ArchiveFormat))
	path := filepath.Join(p.opts.TempDir, name)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", errors.Wrap(err, "failed to create debug infos file")
	}

	err = p.writeArchive(f, cfg, anonymizer, logContent, anonymizedConfig, families)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}

	log.WithField("path", path).Debug("finished creating debug infos archive")
	return path, nil
}

func (p *Provider) writeArchive(f *os.File, cfg *config.Config, anonymizer Anonymizer, logContent, anonymizedConfig string, families []*prom.MetricFamily) error {
	archive, err := newArchiveWriter(cfg.Debug.ArchiveFormat, f)
	if err != nil {
		return err
	}

	app := p.opts.AppName
	if err := archive.AddBytes(app+".log", []byte(anonymizer.Anonymize(logContent))); err != nil {
		return err
	}
	if err := archive.AddBytes(app+"-config.yaml", []byte(anonymizedConfig)); err != nil {
		return err
	}
	if err := addFileIfExists(archive, cfg.DatabaseFolder(), app+".trace.db"); err != nil {
		return err
	}

	logsFolder := cfg.LogsFolder()
	entries, err := os.ReadDir(logsFolder)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "failed to list logs folder")
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), "gclog") {
			if err := archive.AddFile(entry.Name(), filepath.Join(logsFolder, entry.Name())); err != nil {
				return err
			}
		}
	}
	for _, name := range extraLogFiles {
		if err := addFileIfExists(archive, logsFolder, name); err != nil {
			return err
		}
	}

	servLog := filepath.Join(logsFolder, app+".serv.log")
	if utils.FileExists(servLog) {
		content, err := os.ReadFile(servLog)
		if err != nil {
			return errors.Wrap(err, "failed to read service log")
		}
		if err := archive.AddBytes(app+".serv.log", []byte(anonymizer.Anonymize(string(content)))); err != nil {
			return err
		}
	}

	if len(families) > 0 {
		text, err := metricsText(families)
		if err != nil {
			return errors.Wrap(err, "failed to render metrics")
		}
		if err := archive.AddBytes("metrics.txt", text); err != nil {
			return err
		}
	}

	if p.opts.History != nil {
		history, err := json.MarshalIndent(p.opts.History.GetHistory(), "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to serialize thread cpu usage")
		}
		if err := archive.AddBytes("threadcpuusage.json", history); err != nil {
			return err
		}
	}

	return archive.Close()
}

func addFileIfExists(archive archiveWriter, dir, name string) error {
	path := filepath.Join(dir, name)
	if !utils.FileExists(path) {
		return nil
	}
	return archive.AddFile(name, path)
}

func (p *Provider) gather() []*prom.MetricFamily {
	if p.opts.Gatherer == nil {
		return nil
	}
	families, err := p.opts.Gatherer.Gather()
	if err != nil {
		log.WithError(err).Warn("error gathering metrics")
	}
	return families
}

func (p *Provider) anonymizer(cfg *config.Config) Anonymizer {
	if p.opts.Anonymizer != nil {
		return p.opts.Anonymizer
	}
	return NewRegexAnonymizer(cfg.Main.ApiKey, cfg.Main.Username, cfg.Main.Password)
}

func (p *Provider) logProvider(cfg *config.Config) LogProvider {
	if p.opts.LogProvider != nil {
		return p.opts.LogProvider
	}
	maxSize, _ := cfg.Logging.MaxBundleLogBytes()
	return FileLogProvider{Path: cfg.Logging.File, MaxSize: maxSize}
}
