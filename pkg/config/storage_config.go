package config

// StorageConfig selects and configures the persistent key-value backend.
type StorageConfig struct {
	Backend    string   `yaml:"backend"`       // memory, sqlite, rqlite, olric, badger
	Path       string   `yaml:"path"`          // sqlite file or badger directory
	RqliteDSN  string   `yaml:"rqlite_dsn"`    // e.g. http://localhost:5001
	OlricAddrs []string `yaml:"olric_servers"` // Olric cluster members
	OlricDMap  string   `yaml:"olric_dmap"`
}
