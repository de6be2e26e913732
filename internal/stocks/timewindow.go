package stocks

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Window is the span a price question asks about. Either Period names a
// provider interval, or Start/End bound an explicit date range.
type Window struct {
	Period string
	Start  time.Time
	End    time.Time
}

// IsRange reports whether the window carries explicit dates instead of
// a named period.
func (w Window) IsRange() bool {
	return w.Period == ""
}

// Days returns the window length in whole days. Named periods use their
// nominal length.
func (w Window) Days() int {
	if w.IsRange() {
		return int(w.End.Sub(w.Start).Hours() / 24)
	}
	switch w.Period {
	case "1d":
		return 1
	case "1w":
		return 7
	case "1mo":
		return 30
	case "6mo":
		return 180
	case "1y":
		return 365
	}
	return 0
}

// CacheKey returns a stable identifier for the window, used to key
// cached price series.
func (w Window) CacheKey() string {
	if w.IsRange() {
		return fmt.Sprintf("%s_%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	}
	return w.Period
}

type windowPattern struct {
	re       *regexp.Regexp
	period   string // named period when set
	unitDays int    // days per captured count otherwise
}

func numeric(expr string, unitDays int) windowPattern {
	return windowPattern{re: regexp.MustCompile("(?i)" + expr), unitDays: unitDays}
}

func named(expr, period string) windowPattern {
	return windowPattern{re: regexp.MustCompile("(?i)" + expr), period: period}
}

// windowPhrases holds the per-language time phrases. Numeric phrases
// come first so "last 6 months" is read as a 180 day range rather than
// stopping at "last month".
var windowPhrases = map[string][]windowPattern{
	"english": {
		numeric(`last (\d+) months?`, 30),
		numeric(`last (\d+) weeks?`, 7),
		numeric(`last (\d+) years?`, 365),
		numeric(`last (\d+) days?`, 1),
		named(`last year`, "1y"),
		named(`last six months`, "6mo"),
		named(`last month`, "1mo"),
		named(`last week`, "1w"),
		named(`today|last day`, "1d"),
	},
	"swedish": {
		numeric(`senaste (\d+) månader(?:na)?`, 30),
		numeric(`senaste (\d+) veckor(?:na)?`, 7),
		numeric(`senaste (\d+) åren?`, 365),
		numeric(`senaste (\d+) dagar(?:na)?`, 1),
		named(`senaste året`, "1y"),
		named(`senaste halvåret`, "6mo"),
		named(`senaste månaden`, "1mo"),
		named(`senaste veckan`, "1w"),
		named(`idag|senaste dagen`, "1d"),
	},
	"spanish": {
		numeric(`últimos? (\d+) mes(?:es)?`, 30),
		numeric(`últimas? (\d+) semanas?`, 7),
		numeric(`últimos? (\d+) años?`, 365),
		numeric(`últimos? (\d+) días?`, 1),
		named(`último año`, "1y"),
		named(`últimos seis meses`, "6mo"),
		named(`último mes`, "1mo"),
		named(`última semana`, "1w"),
		named(`hoy`, "1d"),
	},
	"german": {
		numeric(`letzten (\d+) monaten?`, 30),
		numeric(`letzten (\d+) wochen`, 7),
		numeric(`letzten (\d+) jahren?`, 365),
		numeric(`letzten (\d+) tagen?`, 1),
		named(`letzte[sn]? jahr`, "1y"),
		named(`letzten sechs monaten`, "6mo"),
		named(`letzten? monat`, "1mo"),
		named(`letzten? woche`, "1w"),
		named(`heute`, "1d"),
	},
	"french": {
		numeric(`derni(?:er|ère)s? (\d+) mois`, 30),
		numeric(`derni(?:er|ère)s? (\d+) semaines?`, 7),
		numeric(`derni(?:er|ère)s? (\d+) ans?`, 365),
		numeric(`derni(?:er|ère)s? (\d+) jours?`, 1),
		named(`dernière année`, "1y"),
		named(`six derniers mois`, "6mo"),
		named(`dernier mois`, "1mo"),
		named(`dernière semaine`, "1w"),
		named(`aujourd'hui`, "1d"),
	},
	"italian": {
		numeric(`ultimi (\d+) mesi`, 30),
		numeric(`ultime (\d+) settimane`, 7),
		numeric(`ultimi (\d+) anni`, 365),
		numeric(`ultimi (\d+) giorni`, 1),
		named(`ultimo anno`, "1y"),
		named(`ultimi sei mesi`, "6mo"),
		named(`ultimo mese`, "1mo"),
		named(`ultima settimana`, "1w"),
		named(`oggi`, "1d"),
	},
	"portuguese": {
		numeric(`últimos (\d+) meses`, 30),
		numeric(`últimas (\d+) semanas`, 7),
		numeric(`últimos (\d+) anos`, 365),
		numeric(`últimos (\d+) dias`, 1),
		named(`último ano`, "1y"),
		named(`últimos seis meses`, "6mo"),
		named(`último mês`, "1mo"),
		named(`última semana`, "1w"),
		named(`hoje`, "1d"),
	},
	"dutch": {
		numeric(`afgelopen (\d+) maanden`, 30),
		numeric(`afgelopen (\d+) weken`, 7),
		numeric(`afgelopen (\d+) jaar`, 365),
		numeric(`afgelopen (\d+) dagen`, 1),
		named(`afgelopen jaar`, "1y"),
		named(`afgelopen zes maanden`, "6mo"),
		named(`afgelopen maand`, "1mo"),
		named(`afgelopen week`, "1w"),
		named(`vandaag`, "1d"),
	},
	"polish": {
		numeric(`ostatni(?:ch|e)? (\d+) miesi[ęe]cy?`, 30),
		numeric(`ostatni(?:ch|e)? (\d+) tygodni`, 7),
		numeric(`ostatni(?:ch|e)? (\d+) lat`, 365),
		numeric(`ostatni(?:ch|e)? (\d+) dni`, 1),
		named(`ostatni rok`, "1y"),
		named(`ostatnie sześć miesięcy`, "6mo"),
		named(`ostatni miesiąc`, "1mo"),
		named(`ostatni tydzień`, "1w"),
		named(`dzisiaj`, "1d"),
	},
	"russian": {
		numeric(`последни[ех] (\d+) месяц(?:а|ев)?`, 30),
		numeric(`последни[ех] (\d+) недел[ьи]`, 7),
		numeric(`последни[ех] (\d+) (?:года|лет)`, 365),
		numeric(`последни[ех] (\d+) дн(?:я|ей)`, 1),
		named(`последний год`, "1y"),
		named(`последние шесть месяцев`, "6mo"),
		named(`последний месяц`, "1mo"),
		named(`последняя неделя`, "1w"),
		named(`сегодня`, "1d"),
	},
}

// defaultWindow is used when no time phrase is present in the query.
var defaultWindow = Window{Period: "1mo"}

// ParseWindow scans the query for the language's time phrases and
// returns the first match as a window. Unknown languages fall back to
// the English phrases; no match yields the one month default.
func ParseWindow(query, language string, now time.Time) Window {
	patterns, ok := windowPhrases[language]
	if !ok {
		patterns = windowPhrases["english"]
	}
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		if p.period != "" {
			return Window{Period: p.period}
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			continue
		}
		return Window{Start: now.AddDate(0, 0, -n*p.unitDays), End: now}
	}
	return defaultWindow
}
