// Package capabilities provides reusable lifecycle behaviors that language
// plugins opt into: Ruby version selection, Bundler, PHP version selection
// and Composer.
package capabilities
