package hh

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Requester performs one API request. *Client satisfies it.
type Requester interface {
	Request(ctx context.Context, method, endpoint string, params url.Values) (json.RawMessage, error)
}

// API groups the typed endpoint wrappers.
type API struct {
	Me           *MeService
	Negotiations *NegotiationsService
	Messages     *MessagesService
	Resumes      *ResumesService
	Vacancies    *VacanciesService
	Blacklist    *BlacklistService
}

// NewAPI wires the services to r.
func NewAPI(r Requester) *API {
	return &API{
		Me:           &MeService{r: r},
		Negotiations: &NegotiationsService{r: r},
		Messages:     &MessagesService{r: r},
		Resumes:      &ResumesService{r: r},
		Vacancies:    &VacanciesService{r: r},
		Blacklist:    &BlacklistService{r: r},
	}
}

func pageParams(page, perPage int) url.Values {
	v := url.Values{"page": {strconv.Itoa(page)}}
	if perPage > 0 {
		v.Set("per_page", strconv.Itoa(perPage))
	}
	return v
}

// ---------------------------------------------------------------------------
// Me
// ---------------------------------------------------------------------------

// MeService wraps /me.
type MeService struct{ r Requester }

// Get returns the current user.
func (s *MeService) Get(ctx context.Context) (*Me, error) {
	body, err := s.r.Request(ctx, http.MethodGet, "/me", nil)
	if err != nil {
		return nil, err
	}
	return decode[Me](body)
}

// ---------------------------------------------------------------------------
// Negotiations
// ---------------------------------------------------------------------------

// NegotiationsService wraps /negotiations.
type NegotiationsService struct{ r Requester }

// NegotiationsQuery filters GET /negotiations.
type NegotiationsQuery struct {
	Page    int
	PerPage int
	// Status is "active", "archived" or "all"; empty leaves it to the server.
	Status string
}

func (q NegotiationsQuery) values() url.Values {
	v := pageParams(q.Page, q.PerPage)
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v
}

// List returns one page of negotiations.
func (s *NegotiationsService) List(ctx context.Context, q NegotiationsQuery) (*NegotiationList, error) {
	body, err := s.r.Request(ctx, http.MethodGet, "/negotiations", q.values())
	if err != nil {
		return nil, err
	}
	return decode[NegotiationList](body)
}

// Create applies resumeID to vacancyID. An empty message sends none.
// It reports false when the server answers 2xx with anything but [].
func (s *NegotiationsService) Create(ctx context.Context, resumeID, vacancyID, message string) (bool, error) {
	params := url.Values{
		"resume_id":  {resumeID},
		"vacancy_id": {vacancyID},
	}
	if message != "" {
		params.Set("message", message)
	}
	body, err := s.r.Request(ctx, http.MethodPost, "/negotiations", params)
	if err != nil {
		return false, err
	}
	return isEmptyList(body), nil
}

// Delete removes an active negotiation. It reports false when the server
// answers 2xx with anything but {}.
func (s *NegotiationsService) Delete(ctx context.Context, id string, withDeclineMessage bool) (bool, error) {
	params := url.Values{"with_decline_message": {strconv.FormatBool(withDeclineMessage)}}
	body, err := s.r.Request(ctx, http.MethodDelete, "/negotiations/active/"+url.PathEscape(id), params)
	if err != nil {
		return false, err
	}
	return isEmptyObject(body), nil
}

// All walks every page of negotiations matching status.
func (s *NegotiationsService) All(ctx context.Context, status string, perPage int, opts PageOptions) ([]Negotiation, error) {
	return CollectPages(ctx, func(ctx context.Context, page int) (Page[Negotiation], error) {
		list, err := s.List(ctx, NegotiationsQuery{Page: page, PerPage: perPage, Status: status})
		if err != nil {
			return Page[Negotiation]{}, err
		}
		return Page[Negotiation]{Items: list.Items, Pages: list.Pages}, nil
	}, opts)
}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

// MessagesService wraps /negotiations/{nid}/messages.
type MessagesService struct{ r Requester }

func messagesPath(nid string) string {
	return "/negotiations/" + url.PathEscape(nid) + "/messages"
}

// List returns one page of a negotiation's messages.
func (s *MessagesService) List(ctx context.Context, nid string, page, perPage int) (*MessageList, error) {
	body, err := s.r.Request(ctx, http.MethodGet, messagesPath(nid), pageParams(page, perPage))
	if err != nil {
		return nil, err
	}
	return decode[MessageList](body)
}

// Send posts a message to a negotiation.
func (s *MessagesService) Send(ctx context.Context, nid, text string) error {
	_, err := s.r.Request(ctx, http.MethodPost, messagesPath(nid), url.Values{"message": {text}})
	return err
}

// ---------------------------------------------------------------------------
// Resumes
// ---------------------------------------------------------------------------

// ResumesService wraps /resumes.
type ResumesService struct{ r Requester }

// Mine lists the user's resumes.
func (s *ResumesService) Mine(ctx context.Context) (*ResumeList, error) {
	body, err := s.r.Request(ctx, http.MethodGet, "/resumes/mine", nil)
	if err != nil {
		return nil, err
	}
	return decode[ResumeList](body)
}

// Get returns a resume in full.
func (s *ResumesService) Get(ctx context.Context, id string) (*ResumeDetail, error) {
	body, err := s.r.Request(ctx, http.MethodGet, "/resumes/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeLenient[ResumeDetail](body)
}

// Publish bumps a resume in search results. It reports false when the
// server answers 2xx with anything but [].
func (s *ResumesService) Publish(ctx context.Context, id string) (bool, error) {
	body, err := s.r.Request(ctx, http.MethodPost, "/resumes/"+url.PathEscape(id)+"/publish", nil)
	if err != nil {
		return false, err
	}
	return isEmptyList(body), nil
}

// SimilarVacancies returns one page of vacancies recommended for a resume.
func (s *ResumesService) SimilarVacancies(ctx context.Context, id string, q VacancySearch) (*VacancyList, error) {
	endpoint := "/resumes/" + url.PathEscape(id) + "/similar_vacancies"
	body, err := s.r.Request(ctx, http.MethodGet, endpoint, q.Values())
	if err != nil {
		return nil, err
	}
	return decode[VacancyList](body)
}

// AllSimilar walks the recommended vacancies. q.Page is ignored.
func (s *ResumesService) AllSimilar(ctx context.Context, id string, q VacancySearch, opts PageOptions) ([]VacancyItem, error) {
	return CollectPages(ctx, func(ctx context.Context, page int) (Page[VacancyItem], error) {
		q.Page = page
		list, err := s.SimilarVacancies(ctx, id, q)
		if err != nil {
			return Page[VacancyItem]{}, err
		}
		return Page[VacancyItem]{Items: list.Items, Pages: list.Pages}, nil
	}, opts)
}

// VacancySearch holds the similar-vacancy search parameters. Zero values
// and nil pointers are not sent.
type VacancySearch struct {
	Page    int
	PerPage int
	OrderBy string

	Text       string
	Schedule   string
	Experience string
	Currency   string
	Salary     int
	Period     int
	DateFrom   string
	DateTo     string

	TopLat       *float64
	BottomLat    *float64
	LeftLng      *float64
	RightLng     *float64
	SortPointLat *float64
	SortPointLng *float64

	SearchField        []string
	Employment         []string
	Area               []string
	Metro              []string
	ProfessionalRole   []string
	Industry           []string
	EmployerID         []string
	ExcludedEmployerID []string
	Label              []string

	OnlyWithSalary *bool
	Clusters       *bool
	NoMagic        *bool
	Premium        *bool
}

// Values encodes the search. Lists are comma-joined and booleans lowercase.
func (q VacancySearch) Values() url.Values {
	v := pageParams(q.Page, q.PerPage)
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	setInt := func(k string, n int) {
		if n != 0 {
			v.Set(k, strconv.Itoa(n))
		}
	}
	setFloat := func(k string, f *float64) {
		if f != nil {
			v.Set(k, strconv.FormatFloat(*f, 'f', -1, 64))
		}
	}
	setList := func(k string, l []string) {
		if len(l) > 0 {
			v.Set(k, strings.Join(l, ","))
		}
	}
	setBool := func(k string, b *bool) {
		if b != nil {
			v.Set(k, strconv.FormatBool(*b))
		}
	}

	set("order_by", q.OrderBy)
	set("text", q.Text)
	set("schedule", q.Schedule)
	set("experience", q.Experience)
	set("currency", q.Currency)
	setInt("salary", q.Salary)
	setInt("period", q.Period)
	set("date_from", q.DateFrom)
	set("date_to", q.DateTo)

	setFloat("top_lat", q.TopLat)
	setFloat("bottom_lat", q.BottomLat)
	setFloat("left_lng", q.LeftLng)
	setFloat("right_lng", q.RightLng)
	setFloat("sort_point_lat", q.SortPointLat)
	setFloat("sort_point_lng", q.SortPointLng)

	setList("search_field", q.SearchField)
	setList("employment", q.Employment)
	setList("area", q.Area)
	setList("metro", q.Metro)
	setList("professional_role", q.ProfessionalRole)
	setList("industry", q.Industry)
	setList("employer_id", q.EmployerID)
	setList("excluded_employer_id", q.ExcludedEmployerID)
	setList("label", q.Label)

	setBool("only_with_salary", q.OnlyWithSalary)
	setBool("clusters", q.Clusters)
	setBool("no_magic", q.NoMagic)
	setBool("premium", q.Premium)
	return v
}

// ---------------------------------------------------------------------------
// Vacancies
// ---------------------------------------------------------------------------

// VacanciesService wraps /vacancies.
type VacanciesService struct{ r Requester }

// Get returns a vacancy in full.
func (s *VacanciesService) Get(ctx context.Context, id string) (*VacancyFull, error) {
	body, err := s.r.Request(ctx, http.MethodGet, "/vacancies/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decode[VacancyFull](body)
}

// ---------------------------------------------------------------------------
// Blacklist
// ---------------------------------------------------------------------------

// BlacklistService wraps the employer and vacancy blacklists.
type BlacklistService struct{ r Requester }

// Employers returns one page of blacklisted employers.
func (s *BlacklistService) Employers(ctx context.Context, page int) (*BlacklistedEmployers, error) {
	body, err := s.r.Request(ctx, http.MethodGet, "/employers/blacklisted", pageParams(page, 0))
	if err != nil {
		return nil, err
	}
	return decode[BlacklistedEmployers](body)
}

// AllEmployerIDs walks the employer blacklist and returns the ids.
func (s *BlacklistService) AllEmployerIDs(ctx context.Context, opts PageOptions) ([]string, error) {
	items, err := CollectPages(ctx, func(ctx context.Context, page int) (Page[BlacklistedEmployer], error) {
		list, err := s.Employers(ctx, page)
		if err != nil {
			return Page[BlacklistedEmployer]{}, err
		}
		return Page[BlacklistedEmployer]{Items: list.Items, Pages: list.Pages}, nil
	}, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, e := range items {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// AddEmployer hides an employer's vacancies and blocks its messages.
func (s *BlacklistService) AddEmployer(ctx context.Context, id string) error {
	_, err := s.r.Request(ctx, http.MethodPut, "/employers/blacklisted/"+url.PathEscape(id), nil)
	return err
}

// AddVacancy hides a vacancy from search results.
func (s *BlacklistService) AddVacancy(ctx context.Context, id string) error {
	_, err := s.r.Request(ctx, http.MethodPut, "/vacancies/blacklisted/"+url.PathEscape(id), nil)
	return err
}
