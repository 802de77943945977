package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-hhapply/internal/config"
	"github.com/alnah/go-hhapply/internal/hh"
	"github.com/alnah/go-hhapply/internal/ops"
	"github.com/alnah/go-hhapply/internal/template"
)

// orderByValues are the sort orders hh accepts for similar vacancies.
var orderByValues = []string{"publication_time", "salary_desc", "salary_asc", "relevance", "distance"}

// applyFlags are the raw apply-similar flag values.
type applyFlags struct {
	resumeID        string
	messageList     string
	force           bool
	ai              bool
	verify          bool
	blockIrrelevant bool
	applyInterval   string
	pageInterval    string
	dryRun          bool
	maxPages        int

	search hh.VacancySearch

	topLat, bottomLat, leftLng, rightLng float64
	sortPointLat, sortPointLng           float64
	onlyWithSalary, clusters             bool
	noMagic, premium                     bool
}

// ApplySimilarCmd creates the apply-similar command.
// The env parameter provides injectable dependencies for testing.
func ApplySimilarCmd(env *Env) *cobra.Command {
	var f applyFlags

	cmd := &cobra.Command{
		Use:   "apply-similar",
		Short: "Apply to vacancies recommended for a resume",
		Long: `Walk the vacancies hh recommends for a resume and apply to each one
that is not blocklisted, needs no test, is not archived and was not
responded to yet.

A cover letter is attached when the vacancy requires one or with --force.
Letters come from --message-list, [default_messages.cover_letter], or the
built-in templates; with --ai they are written by [llm.cover_letters].
With --verify-relevance, [llm.verify_relevance] screens each vacancy first.`,
		Example: `  hhapply apply-similar
  hhapply apply-similar --search golang --schedule remote --order-by publication_time
  hhapply apply-similar -f -L letters.txt --apply-interval 3-8
  hhapply apply-similar --ai --verify-relevance --block-irrelevant --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApplySimilar(cmd, env, &f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.resumeID, "resume-id", "", "Resume to apply with (default: the first one)")
	fl.StringVarP(&f.messageList, "message-list", "L", "", "File with cover letter templates, one per line")
	fl.BoolVarP(&f.force, "force", "f", false, "Attach a cover letter even where none is required")
	fl.BoolVar(&f.ai, "ai", false, "Write cover letters with [llm.cover_letters]")
	fl.BoolVar(&f.verify, "verify-relevance", false, "Screen vacancies with [llm.verify_relevance]")
	fl.BoolVar(&f.blockIrrelevant, "block-irrelevant", false, "Also hide irrelevant vacancies on hh")
	fl.StringVar(&f.applyInterval, "apply-interval", ops.DefaultApplyInterval.String(), "Seconds to wait before each application, X or X-Y")
	fl.StringVar(&f.pageInterval, "page-interval", ops.DefaultPageInterval.String(), "Seconds to wait between search pages, X or X-Y")
	fl.BoolVar(&f.dryRun, "dry-run", false, "Print what would be done without applying")
	fl.IntVar(&f.maxPages, "max-pages", ops.DefaultApplyMaxPages, "Maximum search pages to walk")
	fl.IntVar(&f.search.PerPage, "per-page", ops.DefaultApplyPerPage, "Vacancies per search page")

	fl.StringVar(&f.search.OrderBy, "order-by", "relevance", "Sort order: publication_time, salary_desc, salary_asc, relevance, distance")
	fl.StringVar(&f.search.Text, "search", "", "Search query")
	fl.StringVar(&f.search.Schedule, "schedule", "", "Schedule id (fullDay, shift, flexible, remote, flyInFlyOut)")
	fl.StringVar(&f.search.Experience, "experience", "", "Experience id (noExperience, between1And3, between3And6, moreThan6)")
	fl.StringSliceVar(&f.search.Employment, "employment", nil, "Employment ids")
	fl.StringSliceVar(&f.search.Area, "area", nil, "Area ids")
	fl.StringSliceVar(&f.search.Metro, "metro", nil, "Metro station ids")
	fl.StringSliceVar(&f.search.ProfessionalRole, "professional-role", nil, "Professional role ids")
	fl.StringSliceVar(&f.search.Industry, "industry", nil, "Industry ids")
	fl.StringSliceVar(&f.search.EmployerID, "employer-id", nil, "Only these employers")
	fl.StringSliceVar(&f.search.ExcludedEmployerID, "excluded-employer-id", nil, "Exclude these employers")
	fl.StringVar(&f.search.Currency, "currency", "", "Salary currency code")
	fl.IntVar(&f.search.Salary, "salary", 0, "Expected salary")
	fl.BoolVar(&f.onlyWithSalary, "only-with-salary", false, "Only vacancies with a salary")
	fl.StringSliceVar(&f.search.Label, "label", nil, "Vacancy labels")
	fl.IntVar(&f.search.Period, "period", 0, "Published within this many days")
	fl.StringVar(&f.search.DateFrom, "date-from", "", "Published from (ISO 8601)")
	fl.StringVar(&f.search.DateTo, "date-to", "", "Published to (ISO 8601)")
	fl.Float64Var(&f.topLat, "top-lat", 0, "Geo box top latitude")
	fl.Float64Var(&f.bottomLat, "bottom-lat", 0, "Geo box bottom latitude")
	fl.Float64Var(&f.leftLng, "left-lng", 0, "Geo box left longitude")
	fl.Float64Var(&f.rightLng, "right-lng", 0, "Geo box right longitude")
	fl.Float64Var(&f.sortPointLat, "sort-point-lat", 0, "Latitude to sort by distance from")
	fl.Float64Var(&f.sortPointLng, "sort-point-lng", 0, "Longitude to sort by distance from")
	fl.BoolVar(&f.noMagic, "no-magic", false, "Disable hh query parsing")
	fl.BoolVar(&f.premium, "premium", false, "Include premium vacancies")
	fl.StringSliceVar(&f.search.SearchField, "search-field", nil, "Fields to search in (name, company_name, description)")
	fl.BoolVar(&f.clusters, "clusters", false, "Request search clusters")

	return cmd
}

// parseApplyOptions validates flags into ops.ApplyOptions. LLM chats are
// attached later, once the runtime exists.
func parseApplyOptions(cmd *cobra.Command, f *applyFlags, cfg config.Config) (ops.ApplyOptions, error) {
	if err := oneOf("order-by", f.search.OrderBy, orderByValues); err != nil {
		return ops.ApplyOptions{}, err
	}
	if f.maxPages < 1 {
		return ops.ApplyOptions{}, fmt.Errorf("--max-pages %d: %w", f.maxPages, ErrInvalidValue)
	}
	if f.search.PerPage < 1 || f.search.PerPage > ops.DefaultApplyPerPage {
		return ops.ApplyOptions{}, fmt.Errorf("--per-page %d (1-%d): %w", f.search.PerPage, ops.DefaultApplyPerPage, ErrInvalidValue)
	}
	if f.blockIrrelevant && !f.verify {
		return ops.ApplyOptions{}, fmt.Errorf("--block-irrelevant needs --verify-relevance: %w", ErrConflictingFlags)
	}
	applyIv, err := parseInterval("apply-interval", f.applyInterval)
	if err != nil {
		return ops.ApplyOptions{}, err
	}
	pageIv, err := parseInterval("page-interval", f.pageInterval)
	if err != nil {
		return ops.ApplyOptions{}, err
	}

	messages := template.SplitLines(cfg.DefaultMessages.CoverLetter.Messages)
	if f.messageList != "" {
		if messages, err = readMessageList(f.messageList); err != nil {
			return ops.ApplyOptions{}, err
		}
	}

	search := f.search
	search.TopLat = floatFlag(cmd, "top-lat", f.topLat)
	search.BottomLat = floatFlag(cmd, "bottom-lat", f.bottomLat)
	search.LeftLng = floatFlag(cmd, "left-lng", f.leftLng)
	search.RightLng = floatFlag(cmd, "right-lng", f.rightLng)
	search.SortPointLat = floatFlag(cmd, "sort-point-lat", f.sortPointLat)
	search.SortPointLng = floatFlag(cmd, "sort-point-lng", f.sortPointLng)
	search.OnlyWithSalary = boolFlag(cmd, "only-with-salary", f.onlyWithSalary)
	search.Clusters = boolFlag(cmd, "clusters", f.clusters)
	search.NoMagic = boolFlag(cmd, "no-magic", f.noMagic)
	search.Premium = boolFlag(cmd, "premium", f.premium)

	return ops.ApplyOptions{
		ResumeID:        f.resumeID,
		Search:          search,
		MaxPages:        f.maxPages,
		Force:           f.force,
		Messages:        messages,
		Footer:          cfg.LLM.CoverLetters.Messages.FooterMsg,
		BlockIrrelevant: f.blockIrrelevant,
		ApplyInterval:   applyIv,
		PageInterval:    pageIv,
		DryRun:          f.dryRun,
	}, nil
}

// runApplySimilar executes the apply-similar command.
func runApplySimilar(cmd *cobra.Command, env *Env, f *applyFlags) error {
	ctx := cmd.Context()
	return withRuntime(ctx, env, true, func(rt *runtime) error {
		opts, err := parseApplyOptions(cmd, f, rt.cfg)
		if err != nil {
			return err
		}
		if f.ai {
			if opts.CoverLetter, opts.CoverLetterSystem, err = rt.chat(ctx, config.SectionCoverLetters, template.CoverLettersName, true); err != nil {
				return err
			}
		}
		if f.verify {
			if opts.Relevance, opts.RelevanceSystem, err = rt.chat(ctx, config.SectionVerifyRelevance, template.VerifyRelevanceName, true); err != nil {
				return err
			}
		}

		res, err := ops.ApplySimilar(ctx, rt.deps(), opts)
		_, _ = fmt.Fprintf(env.Stderr, "found %d, applied %d, skipped %d, irrelevant %d, failed %d\n",
			res.Found, res.Applied, res.Skipped, res.Irrelevant, res.Failed)
		return err
	})
}
