// Package misc holds the vendor-neutral leaf actors: Sleep pauses a script
// between steps and Macro compiles and runs a nested script with its own
// token scope. Both register under the "misc." namespace, which is also the
// default namespace for bare actor names.
package misc
