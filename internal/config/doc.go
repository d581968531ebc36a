// Package config defines configuration structures for the pacer CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (PACER_ prefix)
//   - YAML configuration file
//
// Flags override the environment, which overrides the file.
//
// # Example file
//
//	url: https://uploads.example.com/v1/files
//	max_upload_speed_kbps: 800
//	timeout: 30m
//	progress: true
//	request_rate:
//	  rps: 2
//	  burst: 1
//	fields:
//	  title: nightly backup
//	files:
//	  archive: /var/backups/nightly.tar
//	blob:
//	  bucket: s3://my-bucket?region=us-east-1
//	  key: exports/latest.csv
//	  field: export
package config
