// Package config's layering mirrors the environment-variable-override
// pattern common to the example pack's viper-based services: file
// layers set sane defaults for local development, environment
// variables are what production deployments actually set.
package config
