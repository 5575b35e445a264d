package slides

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/slides/v1"

	"github.com/eczema-mitten/mittenpost/internal/common"
	"github.com/eczema-mitten/mittenpost/internal/model"
	"github.com/eczema-mitten/mittenpost/internal/service"
)

// Renderer implements the service.LabelRenderer interface over the Google
// Slides and Drive APIs.
type Renderer struct {
	slides   *slides.Service
	drive    *drive.Service
	logger   *slog.Logger
	progress func(done, total int)
	config   Config
}

// NewRenderer creates a new label renderer.
func NewRenderer(ctx context.Context, config Config, logger *slog.Logger) (*Renderer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	slidesService, driveService, err := createServices(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		config: config,
		slides: slidesService,
		drive:  driveService,
		logger: logger,
	}, nil
}

// SetProgress registers a callback invoked after each rendered slide.
func (r *Renderer) SetProgress(fn func(done, total int)) {
	r.progress = fn
}

// createServices builds the Slides and Drive clients over one authenticated
// HTTP client.
func createServices(ctx context.Context, config Config) (*slides.Service, *drive.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath) // #nosec G304
		if err != nil {
			return nil, nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, apiScopes...)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       apiScopes,
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	slidesService, err := slides.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create slides service: %w", err)
	}
	driveService, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return slidesService, driveService, nil
}

// deck tracks the presentation under construction.
type deck struct {
	presentationID string
	slideIDs       []string // one per label, in label order
	scratchSlide   string   // template or default slide removed once labels render
}

// Render builds one slide per label and returns the presentation URL. An
// empty label list returns immediately without touching the API. Per-slide
// failures are logged and skipped so one bad label cannot sink the deck.
func (r *Renderer) Render(ctx context.Context, labels []model.ShippingLabel) (string, error) {
	if len(labels) == 0 {
		r.logger.Info("no labels to render, skipping slides")
		return "", nil
	}

	title := fmt.Sprintf("%s %s", r.config.PresentationTitle, time.Now().Format("2006-01-02"))

	var d *deck
	var err error
	if r.config.TemplateID != "" {
		d, err = r.prepareFromTemplate(ctx, title, len(labels))
	} else {
		d, err = r.prepareBlank(ctx, title, len(labels))
	}
	if err != nil {
		return "", err
	}

	rendered := 0
	for i, label := range labels {
		if renderErr := r.renderSlide(ctx, d.presentationID, d.slideIDs[i], label); renderErr != nil {
			r.logger.Warn("failed to render label slide",
				"order", label.OrderName,
				"error", renderErr)
		} else {
			rendered++
		}
		if r.progress != nil {
			r.progress(i+1, len(labels))
		}
	}

	if d.scratchSlide != "" {
		if deleteErr := r.deleteSlide(ctx, d.presentationID, d.scratchSlide); deleteErr != nil {
			r.logger.Warn("failed to remove template slide", "error", deleteErr)
		}
	}

	if r.config.ShareWithLink {
		if shareErr := r.shareWithLink(ctx, d.presentationID); shareErr != nil {
			r.logger.Warn("failed to share presentation", "error", shareErr)
		}
	}

	url := presentationURL(d.presentationID)
	r.logger.Info("created label presentation",
		"url", url,
		"rendered", rendered,
		"labels", len(labels))

	return url, nil
}

// prepareFromTemplate copies the template presentation and duplicates its
// first slide once per label.
func (r *Renderer) prepareFromTemplate(ctx context.Context, title string, count int) (*deck, error) {
	file, err := r.drive.Files.Copy(r.config.TemplateID, &drive.File{Name: title}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to copy template presentation: %w", err)
	}

	presentation, err := r.slides.Presentations.Get(file.Id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read copied presentation: %w", err)
	}
	if len(presentation.Slides) == 0 {
		return nil, fmt.Errorf("template presentation %s has no slides", r.config.TemplateID)
	}
	templateSlideID := presentation.Slides[0].ObjectId

	// Each duplicate lands immediately after the template slide, so issuing
	// the requests in reverse keeps the deck in label order.
	slideIDs := make([]string, count)
	requests := make([]*slides.Request, 0, count)
	for i := count - 1; i >= 0; i-- {
		slideIDs[i] = "label-" + uuid.NewString()
		requests = append(requests, &slides.Request{
			DuplicateObject: &slides.DuplicateObjectRequest{
				ObjectId:  templateSlideID,
				ObjectIds: map[string]string{templateSlideID: slideIDs[i]},
			},
		})
	}

	if err := r.batchUpdate(ctx, file.Id, requests); err != nil {
		return nil, fmt.Errorf("failed to duplicate template slide: %w", err)
	}

	return &deck{
		presentationID: file.Id,
		slideIDs:       slideIDs,
		scratchSlide:   templateSlideID,
	}, nil
}

// prepareBlank creates an empty presentation with one blank slide per label.
// Labels render as stacked text boxes since there is no layout to reuse.
func (r *Renderer) prepareBlank(ctx context.Context, title string, count int) (*deck, error) {
	presentation, err := r.slides.Presentations.Create(&slides.Presentation{Title: title}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create presentation: %w", err)
	}

	// A new presentation opens with one default slide; it is removed after
	// the label slides render.
	scratch := ""
	if len(presentation.Slides) > 0 {
		scratch = presentation.Slides[0].ObjectId
	}

	slideIDs := make([]string, count)
	requests := make([]*slides.Request, 0, count)
	for i := range slideIDs {
		slideIDs[i] = "label-" + uuid.NewString()
		requests = append(requests, &slides.Request{
			CreateSlide: &slides.CreateSlideRequest{
				ObjectId: slideIDs[i],
				SlideLayoutReference: &slides.LayoutReference{
					PredefinedLayout: "BLANK",
				},
			},
		})
	}

	if err := r.batchUpdate(ctx, presentation.PresentationId, requests); err != nil {
		return nil, fmt.Errorf("failed to create label slides: %w", err)
	}

	return &deck{
		presentationID: presentation.PresentationId,
		slideIDs:       slideIDs,
		scratchSlide:   scratch,
	}, nil
}

// renderSlide fills one slide with one label's fields.
func (r *Renderer) renderSlide(ctx context.Context, presentationID, slideID string, label model.ShippingLabel) error {
	var page *slides.Page
	err := common.WithRetry(ctx, func() error {
		var getErr error
		page, getErr = r.slides.Presentations.Pages.Get(presentationID, slideID).Context(ctx).Do()
		return getErr
	}, r.retryOpts())
	if err != nil {
		return fmt.Errorf("failed to read slide: %w", err)
	}

	requests, strat := r.buildSlideRequests(page, slideID, label)
	r.logger.Debug("updating label slide",
		"order", label.OrderName,
		"strategy", string(strat),
		"requests", len(requests))

	if err := r.batchUpdate(ctx, presentationID, requests); err != nil {
		return fmt.Errorf("failed to update slide: %w", err)
	}
	return nil
}

// buildSlideRequests maps label fields onto the slide. Token templates get
// native text replacement scoped to the slide; token-less slides go through
// the legacy locator heuristics; bare slides get fresh text boxes.
func (r *Renderer) buildSlideRequests(page *slides.Page, slideID string, label model.ShippingLabel) ([]*slides.Request, strategy) {
	if hasPlaceholderTokens(page) {
		var requests []*slides.Request
		for _, field := range model.AllLabelFields() {
			requests = append(requests, &slides.Request{
				ReplaceAllText: &slides.ReplaceAllTextRequest{
					ContainsText: &slides.SubstringMatchCriteria{
						Text:      placeholderToken(field),
						MatchCase: false,
					},
					ReplaceText:   label.FieldText(field),
					PageObjectIds: []string{slideID},
				},
			})
		}
		return requests, strategyToken
	}

	targets, strat := locateLegacyTargets(page)
	if strat == strategyCreate {
		return createTextBoxRequests(slideID, label), strategyCreate
	}

	var requests []*slides.Request
	for _, field := range model.AllLabelFields() {
		for _, target := range targets[field] {
			// Deleting from an element that has no text fails the whole
			// batch, so the delete is skipped for empty cells.
			if target.hasText {
				requests = append(requests, &slides.Request{
					DeleteText: &slides.DeleteTextRequest{
						ObjectId:     target.objectID,
						CellLocation: target.cell,
						TextRange:    &slides.Range{Type: "ALL"},
					},
				})
			}
			requests = append(requests, &slides.Request{
				InsertText: &slides.InsertTextRequest{
					ObjectId:       target.objectID,
					CellLocation:   target.cell,
					InsertionIndex: 0,
					Text:           label.FieldText(field),
				},
			})
		}
	}
	return requests, strat
}

// Layout for text boxes created on bare slides, in points.
const (
	boxWidthPT  = 350.0
	boxHeightPT = 40.0
	boxLeftPT   = 30.0
	boxTopPT    = 40.0
	boxGapPT    = 50.0
)

func createTextBoxRequests(slideID string, label model.ShippingLabel) []*slides.Request {
	var requests []*slides.Request
	for i, field := range model.AllLabelFields() {
		shapeID := "label-text-" + uuid.NewString()
		requests = append(requests,
			&slides.Request{
				CreateShape: &slides.CreateShapeRequest{
					ObjectId:  shapeID,
					ShapeType: "TEXT_BOX",
					ElementProperties: &slides.PageElementProperties{
						PageObjectId: slideID,
						Size: &slides.Size{
							Width:  &slides.Dimension{Magnitude: boxWidthPT, Unit: "PT"},
							Height: &slides.Dimension{Magnitude: boxHeightPT, Unit: "PT"},
						},
						Transform: &slides.AffineTransform{
							ScaleX:     1,
							ScaleY:     1,
							TranslateX: boxLeftPT,
							TranslateY: boxTopPT + float64(i)*boxGapPT,
							Unit:       "PT",
						},
					},
				},
			},
			&slides.Request{
				InsertText: &slides.InsertTextRequest{
					ObjectId: shapeID,
					Text:     label.FieldText(field),
				},
			},
		)
	}
	return requests
}

func (r *Renderer) batchUpdate(ctx context.Context, presentationID string, requests []*slides.Request) error {
	if len(requests) == 0 {
		return nil
	}
	return common.WithRetry(ctx, func() error {
		_, err := r.slides.Presentations.BatchUpdate(presentationID, &slides.BatchUpdatePresentationRequest{
			Requests: requests,
		}).Context(ctx).Do()
		return err
	}, r.retryOpts())
}

func (r *Renderer) deleteSlide(ctx context.Context, presentationID, slideID string) error {
	return r.batchUpdate(ctx, presentationID, []*slides.Request{{
		DeleteObject: &slides.DeleteObjectRequest{ObjectId: slideID},
	}})
}

// shareWithLink opens the presentation to anyone with the URL, so the link
// in the summary works for whoever does the packing.
func (r *Renderer) shareWithLink(ctx context.Context, presentationID string) error {
	_, err := r.drive.Permissions.Create(presentationID, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	return err
}

func (r *Renderer) retryOpts() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  r.config.RetryAttempts,
		InitialDelay: r.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

func presentationURL(presentationID string) string {
	return "https://docs.google.com/presentation/d/" + presentationID + "/edit"
}
