// Package config provides local-first configuration for the AirDevs console.
//
// All configuration lives in the working directory's .airdevs/ folder:
//
//	.airdevs/
//	├── config.json        # Main configuration
//	└── .gitignore         # Smart defaults for what to ignore
//
// The config.json file contains simple key-value settings:
//
//	{
//	  "backend_url": "http://localhost:8000",
//	  "model": "auto",
//	  "theme": "dark",
//	  "debug": false
//	}
//
// Values can reference environment variables using $VAR or ${VAR}
// syntax, and a handful of AIRDEVS_* environment variables override the
// file after loading (useful for pointing one checkout at different
// backends without editing config.json):
//
//	AIRDEVS_BACKEND_URL, AIRDEVS_MODEL, AIRDEVS_THEME, AIRDEVS_DEBUG
//
// Example usage:
//
//	manager := config.NewManager(workingDir)
//	if err := manager.Load(); err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := manager.Get()
//	fmt.Println("Backend:", cfg.BackendURL)
package config
