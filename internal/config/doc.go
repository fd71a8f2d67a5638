// Package config loads reactive.json, the settings file read by the
// reactive CLI.
//
// # Configuration File Structure
//
//	{
//	  "log_level": "debug",
//	  "log_format": "text",
//	  "max_notify_rounds": 64,
//	  "inspect": {
//	    "host": "localhost",
//	    "port": 7070
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "reactive"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "min_duration": "1ms"
//	  }
//	}
//
// Missing fields take their defaults. Validate reports bad values as E122.
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	reactive.SetConfig(cfg.Runtime())
package config
