// Package source decodes JSON input records and encodes materialized rows as JSON lines.
package source
