// Package directory reads and writes employee profiles stored in a Notion
// database. Profile fields live in loosely-typed page properties, so the
// adapter flattens whatever property type it finds into plain strings.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"
	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/models"
)

// Property names expected in the employee database.
const (
	propName             = "Name"
	propEmail            = "Email"
	propEmployeeID       = "Employee ID"
	propDepartment       = "Department"
	propRole             = "Role"
	propStartDate        = "Start Date"
	propLocation         = "Location"
	propTimeZone         = "Time Zone"
	propAgeRange         = "Age Range"
	propGenderIdentity   = "Gender Identity"
	propCulturalHeritage = "Cultural Heritage"
	propTags             = "Tags"
)

// newHireTag marks employees still in onboarding.
const newHireTag = "New Hire"

// Directory is the employee profile store.
type Directory interface {
	// GetEmployee fetches one profile by page id. Returns nil, nil when
	// the page does not exist.
	GetEmployee(ctx context.Context, id string) (*models.EmployeeProfile, error)

	// ListEmployees returns every profile in the database.
	ListEmployees(ctx context.Context) ([]*models.EmployeeProfile, error)

	// ListNewHires returns profiles tagged as new hires, sorted by name.
	ListNewHires(ctx context.Context) ([]*models.EmployeeProfile, error)

	// SearchEmployees matches the term against name or email.
	SearchEmployees(ctx context.Context, term string) ([]*models.EmployeeProfile, error)

	// CreateEmployee adds a profile and returns it with the assigned id.
	CreateEmployee(ctx context.Context, input *models.EmployeeInput) (*models.EmployeeProfile, error)

	// UpdateEmployee overwrites the provided fields on an existing profile.
	UpdateEmployee(ctx context.Context, id string, input *models.EmployeeInput) (*models.EmployeeProfile, error)
}

type notionDirectory struct {
	client     *notionapi.Client
	databaseID notionapi.DatabaseID
	logger     *zap.Logger
}

// NewDirectory creates a Notion-backed employee directory.
func NewDirectory(apiKey, databaseID string, logger *zap.Logger) Directory {
	return &notionDirectory{
		client:     notionapi.NewClient(notionapi.Token(apiKey)),
		databaseID: notionapi.DatabaseID(databaseID),
		logger:     logger.Named("directory"),
	}
}

func (d *notionDirectory) GetEmployee(ctx context.Context, id string) (*models.EmployeeProfile, error) {
	page, err := d.client.Page.Get(ctx, notionapi.PageID(id))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get employee page: %w", err)
	}
	return pageToProfile(page), nil
}

func (d *notionDirectory) ListEmployees(ctx context.Context) ([]*models.EmployeeProfile, error) {
	return d.queryAll(ctx, &notionapi.DatabaseQueryRequest{
		Sorts: []notionapi.SortObject{
			{Property: propName, Direction: notionapi.SortOrderASC},
		},
	})
}

func (d *notionDirectory) ListNewHires(ctx context.Context) ([]*models.EmployeeProfile, error) {
	return d.queryAll(ctx, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property:    propTags,
			MultiSelect: &notionapi.MultiSelectFilterCondition{Contains: newHireTag},
		},
		Sorts: []notionapi.SortObject{
			{Property: propName, Direction: notionapi.SortOrderASC},
		},
	})
}

func (d *notionDirectory) SearchEmployees(ctx context.Context, term string) ([]*models.EmployeeProfile, error) {
	return d.queryAll(ctx, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.OrCompoundFilter{
			notionapi.PropertyFilter{
				Property: propName,
				RichText: &notionapi.TextFilterCondition{Contains: term},
			},
			notionapi.PropertyFilter{
				Property: propEmail,
				RichText: &notionapi.TextFilterCondition{Contains: term},
			},
		},
	})
}

func (d *notionDirectory) CreateEmployee(ctx context.Context, input *models.EmployeeInput) (*models.EmployeeProfile, error) {
	page, err := d.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: d.databaseID,
		},
		Properties: inputToProperties(input),
	})
	if err != nil {
		return nil, fmt.Errorf("create employee page: %w", err)
	}

	d.logger.Info("Employee created", zap.String("employee_id", string(page.ID)))
	return pageToProfile(page), nil
}

func (d *notionDirectory) UpdateEmployee(ctx context.Context, id string, input *models.EmployeeInput) (*models.EmployeeProfile, error) {
	page, err := d.client.Page.Update(ctx, notionapi.PageID(id), &notionapi.PageUpdateRequest{
		Properties: inputToProperties(input),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("update employee page: %w", err)
	}
	return pageToProfile(page), nil
}

// queryAll pages through a database query until the cursor is exhausted.
func (d *notionDirectory) queryAll(ctx context.Context, req *notionapi.DatabaseQueryRequest) ([]*models.EmployeeProfile, error) {
	var profiles []*models.EmployeeProfile
	for {
		resp, err := d.client.Database.Query(ctx, d.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("query employee database: %w", err)
		}
		for i := range resp.Results {
			profiles = append(profiles, pageToProfile(&resp.Results[i]))
		}
		if !resp.HasMore {
			return profiles, nil
		}
		req.StartCursor = notionapi.Cursor(resp.NextCursor)
	}
}

func isNotFound(err error) bool {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == "object_not_found" || apiErr.Status == 404
	}
	return false
}

// pageToProfile flattens page properties into a profile. Unknown or
// missing properties read as empty strings.
func pageToProfile(page *notionapi.Page) *models.EmployeeProfile {
	return &models.EmployeeProfile{
		ID:               string(page.ID),
		Name:             propertyText(page.Properties[propName]),
		Email:            propertyText(page.Properties[propEmail]),
		EmployeeID:       propertyText(page.Properties[propEmployeeID]),
		Department:       propertyText(page.Properties[propDepartment]),
		Role:             propertyText(page.Properties[propRole]),
		StartDate:        propertyText(page.Properties[propStartDate]),
		Location:         propertyText(page.Properties[propLocation]),
		TimeZone:         propertyText(page.Properties[propTimeZone]),
		AgeRange:         propertyText(page.Properties[propAgeRange]),
		GenderIdentity:   propertyText(page.Properties[propGenderIdentity]),
		CulturalHeritage: propertyList(page.Properties[propCulturalHeritage]),
		Tags:             propertyList(page.Properties[propTags]),
	}
}

// propertyText extracts a single string from any scalar-ish property type.
func propertyText(prop notionapi.Property) string {
	switch p := prop.(type) {
	case *notionapi.TitleProperty:
		return richTextPlain(p.Title)
	case *notionapi.RichTextProperty:
		return richTextPlain(p.RichText)
	case *notionapi.EmailProperty:
		return p.Email
	case *notionapi.SelectProperty:
		return p.Select.Name
	case *notionapi.DateProperty:
		if p.Date == nil || p.Date.Start == nil {
			return ""
		}
		return time.Time(*p.Date.Start).Format("2006-01-02")
	default:
		return ""
	}
}

// propertyList extracts multi-select option names.
func propertyList(prop notionapi.Property) []string {
	p, ok := prop.(*notionapi.MultiSelectProperty)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(p.MultiSelect))
	for _, opt := range p.MultiSelect {
		if opt.Name != "" {
			names = append(names, opt.Name)
		}
	}
	return names
}

func richTextPlain(parts []notionapi.RichText) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.PlainText)
	}
	return strings.TrimSpace(b.String())
}

// inputToProperties builds the property map for create and update calls.
// Empty input fields are omitted so updates only touch provided values.
func inputToProperties(input *models.EmployeeInput) notionapi.Properties {
	props := notionapi.Properties{}

	if input.Name != "" {
		props[propName] = &notionapi.TitleProperty{
			Title: []notionapi.RichText{textValue(input.Name)},
		}
	}
	if input.Email != "" {
		props[propEmail] = &notionapi.EmailProperty{Email: input.Email}
	}
	if input.EmployeeID != "" {
		props[propEmployeeID] = &notionapi.RichTextProperty{
			RichText: []notionapi.RichText{textValue(input.EmployeeID)},
		}
	}
	if input.Department != "" {
		props[propDepartment] = &notionapi.SelectProperty{
			Select: notionapi.Option{Name: input.Department},
		}
	}
	if input.Role != "" {
		props[propRole] = &notionapi.RichTextProperty{
			RichText: []notionapi.RichText{textValue(input.Role)},
		}
	}
	if input.StartDate != "" {
		if start, err := time.Parse("2006-01-02", input.StartDate); err == nil {
			date := notionapi.Date(start)
			props[propStartDate] = &notionapi.DateProperty{
				Date: &notionapi.DateObject{Start: &date},
			}
		}
	}
	if input.Location != "" {
		props[propLocation] = &notionapi.SelectProperty{
			Select: notionapi.Option{Name: input.Location},
		}
	}
	if input.TimeZone != "" {
		props[propTimeZone] = &notionapi.SelectProperty{
			Select: notionapi.Option{Name: input.TimeZone},
		}
	}
	if input.AgeRange != "" {
		props[propAgeRange] = &notionapi.SelectProperty{
			Select: notionapi.Option{Name: input.AgeRange},
		}
	}
	if input.GenderIdentity != "" {
		props[propGenderIdentity] = &notionapi.SelectProperty{
			Select: notionapi.Option{Name: input.GenderIdentity},
		}
	}
	if len(input.CulturalHeritage) > 0 {
		props[propCulturalHeritage] = &notionapi.MultiSelectProperty{
			MultiSelect: optionList(input.CulturalHeritage),
		}
	}
	if len(input.Tags) > 0 {
		props[propTags] = &notionapi.MultiSelectProperty{
			MultiSelect: optionList(input.Tags),
		}
	}

	return props
}

func textValue(s string) notionapi.RichText {
	return notionapi.RichText{Text: &notionapi.Text{Content: s}}
}

func optionList(values []string) []notionapi.Option {
	opts := make([]notionapi.Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, notionapi.Option{Name: v})
	}
	return opts
}
