// Package requirement models a single Python dependency declaration and
// parses declaration text into identity-normalized requirement maps.
//
// A declaration line has the shape
//
//	name [extras] [specifiers] [; marker]
//
// as in `requests[socks]>=2.20,<3; sys_platform != "win32"`. Names are
// canonicalized so that the spelling variants PyPI treats as one package
// ("Foo_Bar", "foo-bar", "foo.bar") collide to a single map key. Environment
// markers are parsed into an evaluable expression tree so callers can decide
// whether a requirement applies to the current platform at all.
package requirement
