package stocks

import (
	"fmt"
	"math"
	"strings"
)

// changeDirections holds the verb for rising and falling prices per
// language.
var changeDirections = map[string][2]string{
	"english":    {"increased", "decreased"},
	"swedish":    {"gått upp", "gått ner"},
	"spanish":    {"aumentado", "disminuido"},
	"german":     {"gestiegen", "gefallen"},
	"french":     {"augmenté", "diminué"},
	"italian":    {"aumentato", "diminuito"},
	"portuguese": {"aumentado", "diminuído"},
	"dutch":      {"gestegen", "gedaald"},
	"polish":     {"wzrosła", "spadła"},
	"russian":    {"увеличился", "уменьшился"},
}

// periodNouns translates the named periods into the sentence noun for
// each language.
var periodNouns = map[string]map[string]string{
	"english":    {"1d": "day", "1w": "week", "1mo": "month", "6mo": "six months", "1y": "year", "days": "days"},
	"swedish":    {"1d": "dagen", "1w": "veckan", "1mo": "månaden", "6mo": "halvåret", "1y": "året", "days": "dagarna"},
	"spanish":    {"1d": "día", "1w": "semana", "1mo": "mes", "6mo": "seis meses", "1y": "año", "days": "días"},
	"german":     {"1d": "Tag", "1w": "Woche", "1mo": "Monat", "6mo": "sechs Monaten", "1y": "Jahr", "days": "Tagen"},
	"french":     {"1d": "jour", "1w": "semaine", "1mo": "mois", "6mo": "six mois", "1y": "an", "days": "jours"},
	"italian":    {"1d": "giorno", "1w": "settimana", "1mo": "mese", "6mo": "sei mesi", "1y": "anno", "days": "giorni"},
	"portuguese": {"1d": "dia", "1w": "semana", "1mo": "mês", "6mo": "seis meses", "1y": "ano", "days": "dias"},
	"dutch":      {"1d": "dag", "1w": "week", "1mo": "maand", "6mo": "zes maanden", "1y": "jaar", "days": "dagen"},
	"polish":     {"1d": "dzień", "1w": "tydzień", "1mo": "miesiąc", "6mo": "sześć miesięcy", "1y": "rok", "days": "dni"},
	"russian":    {"1d": "день", "1w": "неделю", "1mo": "месяц", "6mo": "шесть месяцев", "1y": "год", "days": "дней"},
}

// answerTemplates are the per-language sentence templates. Arguments:
// symbol, direction, change percent, period noun, price. Swedish splits
// on currency so Stockholm listings read in kronor and the rest in
// dollars.
var answerTemplates = map[string]string{
	"english":        "The stock price of %[1]s has %[2]s by %.2[3]f%% over the last %[4]s and is now $%.2[5]f.",
	"swedish_kr":     "Aktiekursen för %[1]s har %[2]s med %.2[3]f%% under den senaste %[4]s och är nu %.2[5]f kr.",
	"swedish_dollar": "Aktiekursen för %[1]s har %[2]s med %.2[3]f%% under den senaste %[4]s och är nu %.2[5]f dollar.",
	"spanish":        "El precio de la acción de %[1]s ha %[2]s un %.2[3]f%% en el último %[4]s y ahora es de %.2[5]f dólares.",
	"german":         "Der Aktienkurs von %[1]s ist im letzten %[4]s um %.2[3]f%% %[2]s und liegt jetzt bei %.2[5]f Dollar.",
	"french":         "Le cours de l'action %[1]s a %[2]s de %.2[3]f%% au cours du dernier %[4]s et est maintenant de %.2[5]f dollars.",
	"italian":        "Il prezzo delle azioni di %[1]s è %[2]s del %.2[3]f%% nell'ultimo %[4]s e ora è di %.2[5]f dollari.",
	"portuguese":     "O preço das ações da %[1]s %[2]s %.2[3]f%% no último %[4]s e agora é de %.2[5]f dólares.",
	"dutch":          "De aandelenkoers van %[1]s is de afgelopen %[4]s met %.2[3]f%% %[2]s en is nu %.2[5]f dollar.",
	"polish":         "Cena akcji %[1]s %[2]s o %.2[3]f%% w ostatnim okresie (%[4]s) i wynosi teraz %.2[5]f dolarów.",
	"russian":        "Курс акций %[1]s %[2]s на %.2[3]f%% за последний %[4]s и сейчас составляет %.2[5]f долларов.",
}

// FormatAnswer renders the localized price sentence. Unknown languages
// fall back to English.
func FormatAnswer(symbol string, price, pctChange float64, window Window, language string) string {
	templateKey := language
	if language == "swedish" {
		if strings.HasSuffix(symbol, ".ST") {
			templateKey = "swedish_kr"
		} else {
			templateKey = "swedish_dollar"
		}
	}
	template, ok := answerTemplates[templateKey]
	if !ok {
		template = answerTemplates["english"]
		language = "english"
	}

	directions, ok := changeDirections[language]
	if !ok {
		directions = changeDirections["english"]
	}
	direction := directions[0]
	if pctChange < 0 {
		direction = directions[1]
	}

	return fmt.Sprintf(template, symbol, direction, math.Abs(pctChange), periodNoun(window, language), price)
}

// periodNoun renders the window as a sentence noun. Explicit ranges
// read as a day count.
func periodNoun(window Window, language string) string {
	nouns, ok := periodNouns[language]
	if !ok {
		nouns = periodNouns["english"]
	}
	if window.IsRange() {
		return fmt.Sprintf("%d %s", window.Days(), nouns["days"])
	}
	if noun, ok := nouns[window.Period]; ok {
		return noun
	}
	return nouns["1mo"]
}
