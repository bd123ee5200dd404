// Package analyzers provides the bundled per-format rule sets.
//
// Every analyzer walks its document line by line through a fix.LineFixer,
// so each textual change is recorded as an edit and the fixed text can be
// rebuilt from the original. Analyzers perform no I/O.
//
// # Formats
//
//   - bash: unbraced variables, unguarded cd, read without -r, misplaced quotes
//   - python: print statements, bare except, mutable defaults, None and literal
//     comparisons, missing docstrings, unused imports
//   - javascript, nodejs: var, loose equality, console.log, eval, sync I/O
//   - sql: SELECT *, unbounded UPDATE/DELETE, DROP and CREATE guards, grants,
//     plaintext passwords
//   - json, yaml, toml, ini: whitespace hygiene, literal and quoting fixes,
//     parse errors with positions
//   - docker-compose, kubernetes: image tags, restart policies, privileges,
//     resources and secrets, read from the yaml.v3 node tree
//   - dockerfile, makefile, systemd: build and unit hygiene
//   - terraform, nginx, github-actions: credentials, encryption, TLS
//     hardening and workflow pinning
//   - markdown, markpact: nesting formats; embedded blocks are dispatched as
//     their own documents and their findings are remapped into the host
//
// # Registration
//
// NewRegistry builds a frozen registry whose fallback is bash. Formats
// without a bundled analyzer are analyzed by the fallback.
package analyzers
