// Package mm reads Metamath databases and builds the assertions they declare.
package mm
