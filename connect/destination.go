package connect

import (
	"net/url"
	"regexp"

	"github.com/pkg/errors"
)

// endpointPattern is the identifier grammar for symbolic destinations:
// alphanumeric segments separated by colons, with optional // and : prefixes.
var endpointPattern = regexp.MustCompile(`(?i)^(?://)?:?[a-z0-9][a-z0-9:]+$`)

type destinationKind int

const (
	destinationNone destinationKind = iota
	destinationURL
	destinationEndpoint
	destinationEndpointNamed
)

// Destination is where the provider sends the browser back to: either a fixed
// absolute URL, or a symbolic endpoint resolved through the application's
// LinkBuilder with positional or named arguments. Construct one with
// DestinationURL, DestinationEndpoint or DestinationEndpointNamed; the
// constructors validate at startup so a bad configuration never reaches
// request time.
type Destination struct {
	kind       destinationKind
	url        *url.URL
	endpoint   string
	positional []string
	named      map[string]string
}

// DestinationURL configures a fixed absolute return URL.
func DestinationURL(raw string) (Destination, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Destination{}, errors.Wrapf(InvalidDestinationErr, "[DestinationURL] %q does not parse: %s", raw, err)
	}
	if u.Scheme == "" {
		return Destination{}, errors.Wrapf(InvalidDestinationErr, "[DestinationURL] %q is missing a scheme, hint: %q", raw, "https://"+raw)
	}
	if u.Path == "" {
		return Destination{}, errors.Wrapf(InvalidDestinationErr, "[DestinationURL] are you sure you want to redirect to %q? hint: add a path such as %q", raw, raw+"/oauth-callback")
	}
	return Destination{kind: destinationURL, url: u}, nil
}

// DestinationEndpoint configures a symbolic endpoint with positional
// arguments.
func DestinationEndpoint(endpoint string, args ...string) (Destination, error) {
	if !endpointPattern.MatchString(endpoint) {
		return Destination{}, errors.Wrapf(InvalidDestinationErr, "[DestinationEndpoint] %q does not look like a valid endpoint name", endpoint)
	}
	return Destination{kind: destinationEndpoint, endpoint: endpoint, positional: args}, nil
}

// DestinationEndpointNamed configures a symbolic endpoint with named
// arguments.
func DestinationEndpointNamed(endpoint string, args map[string]string) (Destination, error) {
	if !endpointPattern.MatchString(endpoint) {
		return Destination{}, errors.Wrapf(InvalidDestinationErr, "[DestinationEndpointNamed] %q does not look like a valid endpoint name", endpoint)
	}
	return Destination{kind: destinationEndpointNamed, endpoint: endpoint, named: args}, nil
}

func (d Destination) configured() bool {
	return d.kind != destinationNone
}

func (d Destination) needsLinkBuilder() bool {
	return d.kind == destinationEndpoint || d.kind == destinationEndpointNamed
}

// resolve computes the concrete URL. Symbolic forms merge the current
// request's persistent parameter defaults under the configured arguments, so
// configured arguments win on conflict.
func (d Destination) resolve(links LinkBuilder) (*url.URL, error) {
	switch d.kind {
	case destinationURL:
		return d.url, nil
	case destinationEndpoint, destinationEndpointNamed:
		named := make(map[string]string)
		for name, def := range links.CurrentPersistentParams() {
			named[name] = def
		}
		for name, value := range d.named {
			named[name] = value
		}
		resolved, err := links.Resolve(d.endpoint, d.positional, named)
		if err != nil {
			return nil, errors.Wrapf(err, "[Destination.resolve] endpoint %q", d.endpoint)
		}
		return resolved, nil
	}
	return nil, errors.Wrap(InvalidDestinationErr, "[Destination.resolve] no destination configured")
}
