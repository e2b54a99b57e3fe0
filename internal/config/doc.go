// Package config provides configuration parsing for appstore deployments.
//
// The configuration is stored in appstore.json or appstore.yaml in the
// working directory. This package handles loading, saving, defaulting and
// validating it.
//
// # Configuration File Structure
//
//	name: demo
//	server:
//	  addr: ":8080"
//	  title: Demo
//	transport:
//	  timeout: 5s
//	  retries: 2
//	  retryDelay: 100ms
//	  rateLimit: 50
//	  burst: 10
//	  maxConcurrentFetches: 8
//	backend:
//	  type: s3          # or "memory"
//	  bucket: my-bucket
//	  prefix: records
//	  seed:
//	    users:
//	      - {id: "1", name: Ada}
//	models:
//	  - name: users
//	    endpoint: /records/users
//	    idAttribute: id
//
// Endpoints starting with "/" are resolved against the server's own
// address; absolute URLs are used as is.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Server.Addr)
package config
