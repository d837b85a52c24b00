/*
Package ffikit generates foreign-language bindings for every crate linked
into a single compiled shared library.

Interface metadata is embedded in the library's exported symbols at build
time. Given only the path to the built cdylib, ffikit recovers that
metadata, figures out which crate each piece belongs to, rebuilds a
validated interface model per crate and drives a binding generator over
each one.

# Architecture pipeline (for developers)

Each element in the pipeline has distinct sub-packages that do a specific part. These are then glued together in [GenerateExternalBindings].
 1. [introspect]: Scan the shared library (ELF/Mach-O/PE) and decode the embedded metadata records
 2. [meta]: Partition the flat record stream into one group per crate
 3. [ir]: Fold each group into a validated component interface
 4. [config]: Load 'ffikit.toml' and layer inferred defaults onto it
 5. [gen]: Emit Kotlin/Swift/Python sources per component
*/
package ffikit
