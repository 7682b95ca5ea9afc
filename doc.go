// Package templao is a declarative templating and diffing engine.
//
// A source tree containing `{expression}` placeholder markers compiles once
// into an immutable Template: a descriptor table mapping stable node indices
// to part descriptors. Each Template instantiates any number of times; an
// instance owns a cloned tree plus live part bindings and applies only the
// minimal set of mutations needed to reflect changed context values on each
// Update call.
//
// Placeholders bind in text content and in attribute values. Attribute
// bindings classify by name prefix: `?name` toggles a boolean attribute,
// `.name` assigns a host-object property, and an unprefixed name sets a
// plain string attribute. Expressions are either a single context key
// (static) or a `fn(a, b)` call whose function and parameters are all
// context keys (dynamic); dynamic parameters retain their last supplied
// value across partial context patches.
//
// The engine is platform-agnostic: it manipulates trees exclusively through
// the tree.Tree contract. Package htmltree provides the default
// implementation over golang.org/x/net/html.
package templao
