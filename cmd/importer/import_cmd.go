package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nesttask/backend/config"
	"nesttask/backend/internal/dto"
	"nesttask/backend/internal/model"
	"nesttask/backend/internal/repository"
	"nesttask/backend/internal/service"
	"nesttask/backend/pkg/database"
	applogger "nesttask/backend/pkg/logger"
)

type importOptions struct {
	file    string
	role    string
	section string
	userID  string
	dryRun  bool
	output  string
	strict  bool
	migrate bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk import courses from an .xlsx or .json file",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			return runImport(cmd.Context(), cfgPath, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Input file: .xlsx workbook or .json array of courses (required)")
	cmd.Flags().StringVar(&opts.role, "role", model.RoleAdmin, "Role to import as: admin or section_admin")
	cmd.Flags().StringVar(&opts.section, "section", "", "Section id of the importing user (default section for rows)")
	cmd.Flags().StringVar(&opts.userID, "user", "", "User id recorded as created_by (required)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Parse and print the candidates without touching the database")
	cmd.Flags().StringVar(&opts.output, "output", "", "Write the JSON report to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with a non-zero status when any row fails")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "Run database migrations before importing")

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func (o *importOptions) validate() error {
	ext := strings.ToLower(filepath.Ext(o.file))
	if ext != ".xlsx" && ext != ".json" {
		return withCode(exitUsage, fmt.Errorf("unsupported --file extension %q, want .xlsx or .json", ext))
	}
	if _, err := uuid.Parse(strings.TrimSpace(o.userID)); err != nil {
		return withCode(exitUsage, fmt.Errorf("invalid --user: %w", err))
	}
	if o.section != "" {
		if _, err := uuid.Parse(o.section); err != nil {
			return withCode(exitUsage, fmt.Errorf("invalid --section: %w", err))
		}
	}
	return nil
}

func runImport(ctx context.Context, cfgPath string, opts importOptions, stdout io.Writer) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return withCode(exitFailure, fmt.Errorf("load config: %w", err))
	}

	logger, err := applogger.NewLogger(&cfg.Log, "nesttask-importer")
	if err != nil {
		return withCode(exitFailure, err)
	}
	defer logger.Sync()

	// dry-run 不连接数据库，仅需解析能力
	importSvc := service.NewImportService(&cfg.Import, nil, nil, nil, logger)
	candidates, err := readCandidates(opts.file, importSvc)
	if err != nil {
		return withCode(exitUsage, err)
	}

	out := stdout
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return withCode(exitFailure, fmt.Errorf("create output: %w", err))
		}
		defer f.Close()
		out = f
	}

	if opts.dryRun {
		logger.Info("dry-run: 已解析课程", zap.Int("count", len(candidates)))
		return writeJSON(out, candidates)
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return withCode(exitFailure, fmt.Errorf("connect database: %w", err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		return withCode(exitFailure, err)
	}
	defer sqlDB.Close()

	if opts.migrate {
		if err := database.RunMigrations(sqlDB, logger); err != nil {
			return withCode(exitFailure, fmt.Errorf("run migrations: %w", err))
		}
	}

	repo := repository.NewRepository(db)
	resolver := service.NewTeacherResolver(repo, cfg.Import.TeacherPhonePlaceholder, logger)
	importSvc = service.NewImportService(&cfg.Import, repo, resolver, nil, logger)

	auth := service.AuthContext{UserID: opts.userID, Role: opts.role, SectionID: opts.section}
	report := importSvc.BulkImportCourses(ctx, auth, candidates)

	logger.Info("导入完成",
		zap.String("file", opts.file),
		zap.Int("total", report.Total),
		zap.Int("success", report.Success),
		zap.Int("errors", len(report.Errors)),
	)

	if err := writeJSON(out, report); err != nil {
		return withCode(exitFailure, err)
	}
	return reportExitError(report, opts.strict)
}

// reportExitError 将导入报告映射为进程退出码：整批拒绝为 exitFailure，
// strict 模式下存在未导入的行为 exitRowError，其余为 nil
func reportExitError(report *dto.CourseImportReport, strict bool) error {
	if report.Aborted() {
		return withCode(exitFailure, fmt.Errorf("import aborted: %s", report.Errors[0].Message))
	}
	if strict && report.Success < report.Total {
		return withCode(exitRowError, fmt.Errorf("%d of %d rows were not imported", report.Total-report.Success, report.Total))
	}
	return nil
}

// readCandidates 按扩展名读取 Excel 或 JSON 输入
func readCandidates(path string, importSvc service.ImportService) ([]dto.CourseCandidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return importSvc.ParseCourseFile(f)
	}

	var candidates []dto.CourseCandidate
	if err := json.NewDecoder(f).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return candidates, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
