package transit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/bobmcallan/answerd/internal/common"
)

// ErrUnparsableQuery is returned when no origin and destination pair
// could be read from the query.
var ErrUnparsableQuery = errors.New("transit: could not parse origin and destination")

// ErrNoStopFound is returned when the stop lookup has no match.
var ErrNoStopFound = errors.New("transit: no matching stop")

// TripQuery is an origin and destination pair read from a query.
type TripQuery struct {
	Origin      string
	Destination string
}

var (
	fromToPattern = regexp.MustCompile(`(?i)från\s+([\p{L}\d ]+?)\s+till\s+([\p{L}\d ]+)`)
	toFromPattern = regexp.MustCompile(`(?i)till\s+([\p{L}\d ]+?)\s+från\s+([\p{L}\d ]+)`)
)

// ParseTripQuery reads "från X till Y" or "till Y från X" out of a
// query. Trailing question marks and whitespace are dropped.
func ParseTripQuery(query string) (*TripQuery, error) {
	query = strings.TrimSpace(strings.TrimRight(query, "?!."))
	if m := fromToPattern.FindStringSubmatch(query); m != nil {
		return &TripQuery{
			Origin:      strings.TrimSpace(m[1]),
			Destination: strings.TrimSpace(m[2]),
		}, nil
	}
	if m := toFromPattern.FindStringSubmatch(query); m != nil {
		return &TripQuery{
			Origin:      strings.TrimSpace(m[2]),
			Destination: strings.TrimSpace(m[1]),
		}, nil
	}
	return nil, ErrUnparsableQuery
}

// Departure is one upcoming trip leg leaving the origin stop.
type Departure struct {
	Time      time.Time
	Product   string
	Direction string
}

const defaultBaseURL = "https://api.resrobot.se"

// Client queries the ResRobot journey planner.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	now        func() time.Time
}

// NewClient builds a ResRobot client. An empty baseURL uses the public
// endpoint.
func NewClient(baseURL, apiKey string, logger *common.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
		now:        time.Now,
	}
}

type stopLookupResponse struct {
	Matches []struct {
		StopLocation *struct {
			ExtID string `json:"extId"`
			Name  string `json:"name"`
		} `json:"StopLocation"`
	} `json:"stopLocationOrCoordLocation"`
}

// StopID looks up the ResRobot stop identifier for a stop name.
func (c *Client) StopID(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Set("input", name)
	params.Set("format", "json")
	params.Set("accessId", c.apiKey)

	var payload stopLookupResponse
	if err := c.getJSON(ctx, "/v2.1/location.name", params, &payload); err != nil {
		return "", err
	}
	for _, m := range payload.Matches {
		if m.StopLocation != nil {
			return m.StopLocation.ExtID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoStopFound, name)
}

type tripResponse struct {
	Trip []struct {
		LegList struct {
			Leg []struct {
				Origin struct {
					Time string `json:"time"`
					Date string `json:"date"`
				} `json:"Origin"`
				Direction string `json:"direction"`
				Product   []struct {
					CatOutL string `json:"catOutL"`
				} `json:"Product"`
			} `json:"Leg"`
		} `json:"LegList"`
	} `json:"Trip"`
}

// Trips returns upcoming departures from origin towards destination,
// earliest first.
func (c *Client) Trips(ctx context.Context, originID, destID string) ([]Departure, error) {
	params := url.Values{}
	params.Set("originExtId", originID)
	params.Set("destExtId", destID)
	params.Set("format", "json")
	params.Set("accessId", c.apiKey)

	var payload tripResponse
	if err := c.getJSON(ctx, "/v2.1/trip", params, &payload); err != nil {
		return nil, err
	}

	departures := make([]Departure, 0, len(payload.Trip))
	for _, trip := range payload.Trip {
		if len(trip.LegList.Leg) == 0 {
			continue
		}
		leg := trip.LegList.Leg[0]
		when, err := time.ParseInLocation("2006-01-02 15:04:05", leg.Origin.Date+" "+leg.Origin.Time, time.Local)
		if err != nil {
			continue
		}
		d := Departure{Time: when, Direction: leg.Direction}
		if len(leg.Product) > 0 {
			d.Product = leg.Product[0].CatOutL
		}
		departures = append(departures, d)
	}
	return departures, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("transit: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("transit: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("transit: %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("transit: decode %s response: %w", path, err)
	}
	return nil
}

// Resolve answers a departure question end to end: parse the stops,
// look them up, fetch trips and render the Swedish answer.
func (c *Client) Resolve(ctx context.Context, query string) (string, error) {
	trip, err := ParseTripQuery(query)
	if err != nil {
		return "", err
	}

	originID, err := c.StopID(ctx, trip.Origin)
	if err != nil {
		return "", err
	}
	destID, err := c.StopID(ctx, trip.Destination)
	if err != nil {
		return "", err
	}

	departures, err := c.Trips(ctx, originID, destID)
	if err != nil {
		return "", err
	}
	c.logger.Debug().
		Str("origin", trip.Origin).
		Str("destination", trip.Destination).
		Int("departures", len(departures)).
		Msg("Transit query resolved")

	return FormatDepartures(*trip, departures, c.now()), nil
}

// FormatDepartures renders the next departures as a Swedish sentence.
// At most three departures are mentioned.
func FormatDepartures(trip TripQuery, departures []Departure, now time.Time) string {
	upcoming := make([]Departure, 0, 3)
	for _, d := range departures {
		if d.Time.Before(now) {
			continue
		}
		upcoming = append(upcoming, d)
		if len(upcoming) == 3 {
			break
		}
	}
	if len(upcoming) == 0 {
		return fmt.Sprintf("Jag hittade inga avgångar från %s till %s just nu.", trip.Origin, trip.Destination)
	}

	first := upcoming[0]
	minutes := int(first.Time.Sub(now).Minutes())
	answer := fmt.Sprintf("Nästa avgång från %s till %s går om %d minuter (%s).",
		trip.Origin, trip.Destination, minutes, first.Time.Format("15:04"))

	if len(upcoming) > 1 {
		later := make([]string, 0, 2)
		for _, d := range upcoming[1:] {
			later = append(later, d.Time.Format("15:04"))
		}
		answer += fmt.Sprintf(" Därefter %s.", strings.Join(later, " och "))
	}
	return answer
}
