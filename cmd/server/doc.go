// Command server runs the computer-use gateway.
package main
