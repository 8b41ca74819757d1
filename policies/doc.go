// Package policies declares the command-response types of the policies
// domain: mutations of policy entries, their resources and subjects.
// See package things for the registration pattern.
package policies
