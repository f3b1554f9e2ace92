// dicomaudit checks a DICOM archive laid out as <root>/<subject>/<sequence>
// against a catalog of expected sequences and file counts. It writes one table
// with a row per observed sequence and one with a row per subject listing what
// is missing or incomplete, then optionally copies both to object storage and
// streams them into BigQuery.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/carbocation/dicomaudit/audit"
	"github.com/carbocation/dicomaudit/buildinfo"
	"github.com/carbocation/dicomaudit/config"
	"github.com/carbocation/dicomaudit/dicommeta"
	"github.com/carbocation/dicomaudit/objstore"
	"github.com/carbocation/dicomaudit/report"
)

func main() {
	var (
		configPath, root, observed, missing, catalogPath string
		upload, bqProject, bqDataset, nameSource         string
		aux, version                                     bool
	)

	flag.StringVar(&configPath, "config", "", "Optional .json or .yaml file with audit settings. Flags override its values.")
	flag.StringVar(&root, "root", "", "Archive root, holding one folder per subject.")
	flag.StringVar(&observed, "observed", config.DefaultObservedOutput, "Path for the observed-sequences table.")
	flag.StringVar(&missing, "missing", config.DefaultMissingOutput, "Path for the missing-sequences table.")
	flag.StringVar(&catalogPath, "catalog", "", "Expected-count catalog (.csv, .tsv, .json or .yaml; local, gs:// or s3://). Defaults to the built-in catalog.")
	flag.StringVar(&nameSource, "name-source", string(audit.NameFromProtocol), "Where sequence names come from: 'protocol' (DICOM ProtocolName, else folder name) or 'folder'.")
	flag.BoolVar(&aux, "aux", false, "Also detect VFT, TRENDS and exam card artifacts in resources folders.")
	flag.StringVar(&upload, "upload", "", "Optional gs:// or s3:// prefix to copy both tables to.")
	flag.StringVar(&bqProject, "bq-project", "", "Optional BigQuery project to stream both tables into. Requires -bq-dataset.")
	flag.StringVar(&bqDataset, "bq-dataset", "", "BigQuery dataset for -bq-project.")
	flag.BoolVar(&version, "version", false, "Print build information and exit.")
	flag.Parse()

	if version {
		fmt.Println(buildinfo.Get())
		return
	}

	log.Println(buildinfo.Get())

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.ParseConfigFromPath(configPath)
		if err != nil {
			log.Fatalln(err)
		}
	}

	// Only flags that were actually given override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			cfg.Root = root
		case "observed":
			cfg.ObservedOutput = observed
		case "missing":
			cfg.MissingOutput = missing
		case "catalog":
			cfg.Catalog = catalogPath
		case "name-source":
			cfg.NameSource = audit.NameSource(nameSource)
		case "aux":
			cfg.Auxiliary = aux
		case "upload":
			cfg.Upload = upload
		case "bq-project":
			cfg.BigQueryProject = bqProject
		case "bq-dataset":
			cfg.BigQueryDataset = bqDataset
		}
	})

	if err := cfg.ExpandHome(); err != nil {
		log.Fatalln(err)
	}

	if err := cfg.Validate(); err != nil {
		log.Println(err)
		flag.Usage()
		os.Exit(1)
	}

	log.Println("Started running at", time.Now())
	defer func() {
		log.Println("Completed at", time.Now())
	}()

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	cat, err := cfg.LoadCatalog(ctx)
	if err != nil {
		return err
	}
	log.Printf("Auditing %s against %d expected sequences\n", cfg.Root, cat.Len())

	auditor := audit.Auditor{
		Catalog:    cat,
		Walker:     cfg.Walker(),
		Reader:     dicommeta.Reader{},
		NameSource: cfg.NameSource,
	}

	// Tables are written even when the walk fails, so a broken run still
	// leaves well-formed (possibly empty) outputs behind
	res, walkErr := auditor.Run(cfg.Root)

	if err := report.WriteFiles(cfg.ObservedOutput, cfg.MissingOutput, res, cat, cfg.Auxiliary); err != nil {
		return err
	}
	log.Printf("Wrote %s and %s\n", cfg.ObservedOutput, cfg.MissingOutput)
	log.Println(res.Stats)

	if walkErr != nil {
		return walkErr
	}

	if cfg.Upload != "" {
		for _, local := range []string{cfg.ObservedOutput, cfg.MissingOutput} {
			dest, err := objstore.Upload(ctx, local, cfg.Upload, cfg.S3)
			if err != nil {
				return err
			}
			log.Printf("Copied %s to %s\n", local, dest)
		}
	}

	if cfg.BigQueryProject != "" {
		if err := report.LoadBigQuery(ctx, cfg.BigQueryProject, cfg.BigQueryDataset, res, cat); err != nil {
			return err
		}
	}

	return nil
}
