// Command subjmap-translate batch-translates subject headings in a file
// of MARC records using a subjectmap configuration. Records that cannot
// be translated are written through unchanged; individual failures never
// abort the batch.
package main

import (
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/opencataloging/subjectmap/pkg/marc"
	"github.com/opencataloging/subjectmap/pkg/subjectmap"
)

var (
	configPath = flag.String("config", "", "Path to the subjectmap configuration XML (required)")
	inPath     = flag.String("in", "-", "Input MARC file in ISO 2709 format, or - for stdin")
	outPath    = flag.String("out", "-", "Output MARC file, or - for stdout")
	logPath    = flag.String("log", "", "Diagnostic log file (default: stderr)")
	logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")

	metricsAddr = flag.String("metrics-addr", "", "Optional listen address for Prometheus /metrics (e.g. :9090)")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.WithError(err).Warn("Invalid log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if *configPath == "" {
		logger.Fatal("-config is required")
	}

	cfg, err := subjectmap.LoadConfig(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	logger.WithFields(logrus.Fields{
		"config": *configPath,
		"fields": len(cfg.Fields()),
	}).Info("Configuration loaded")

	engine, err := subjectmap.NewEngine(subjectmap.EngineConfig{
		Config:  cfg,
		Logger:  logger,
		LogPath: *logPath,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to create translation engine")
	}
	defer engine.Close()

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, logger)
	}

	in, err := openInput(*inPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open input file")
	}
	defer in.Close()

	out, err := openOutput(*outPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open output file")
	}
	defer out.Close()

	read, translated, err := translateBatch(engine, in, out, logger)
	if err != nil {
		logger.WithError(err).Fatal("Batch translation aborted")
	}
	logger.WithFields(logrus.Fields{
		"records_read":       read,
		"records_translated": translated,
		"records_unchanged":  read - translated,
	}).Info("Batch translation complete")
}

// translateBatch streams records from in to out, replacing each record
// with its translated copy when the engine produced one.
func translateBatch(engine *subjectmap.Engine, in io.Reader, out io.Writer, logger *logrus.Logger) (read, translated int, err error) {
	reader := marc.NewReader(in)
	writer := marc.NewWriter(out)

	for {
		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return read, translated, nil
		}
		if err != nil {
			return read, translated, err
		}
		read++

		result, ok, err := engine.TranslateRecord(rec)
		if err != nil {
			return read, translated, err
		}
		if ok {
			rec = result
			translated++
		} else {
			logger.WithFields(logrus.Fields{
				"record": rec.ControlValue("001"),
			}).Debug("No translation performed, writing record unchanged")
		}

		if err := writer.Write(rec); err != nil {
			return read, translated, err
		}
	}
}

func serveMetrics(addr string, logger *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.WithFields(logrus.Fields{
		"addr": addr,
	}).Info("Serving Prometheus metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.WithError(err).Error("Metrics server stopped")
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
