package config

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 5971,
			Host: "localhost",
		},
		Search: SearchConfig{
			Depth:             10,
			MaxResults:        25,
			MinScoreThreshold: 5,
			ImportantPhrases:  []string{},
			FallbackToChat:    true,
			LoopUntilSuccess:  false,
			Region:            "se-sv",
		},
		Stocks: StocksConfig{
			DefaultLanguage: "english",
			NameToSymbol: map[string]string{
				"apple":     "AAPL",
				"microsoft": "MSFT",
				"google":    "GOOGL",
				"tesla":     "TSLA",
				"amazon":    "AMZN",
				"volvo":     "VOLV-B.ST",
				"ericsson":  "ERIC-B.ST",
			},
			ProviderURL: "https://query1.finance.yahoo.com",
			CacheTTL:    "1h",
		},
		Intents: IntentsConfig{
			TransportEnabled:  true,
			DocumentEnabled:   true,
			StockEnabled:      true,
			PhotoEnabled:      true,
			TransportTriggers: []string{"bus", "train", "buss", "bussen", "tåg", "tåget"},
			DocumentTriggers:  []string{"document", "documents", "dokument", "file", "fil"},
			StockTriggers:     []string{"stock", "price", "aktie", "pris", "kurs"},
			PhotoTriggers:     []string{"photo", "photos", "foto", "bilder"},
		},
		Documents: DocumentsConfig{
			Dir:          "./data/documents",
			ContextLines: 4,
		},
		Photos: PhotosConfig{
			Dir: "./data/photos",
		},
		Transit: TransitConfig{
			BaseURL: "https://api.resrobot.se",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/answerd",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
