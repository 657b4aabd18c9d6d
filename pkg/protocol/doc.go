/*
Package protocol holds the text conventions shared by the fss processes.

There are two channels:
1) The control channel between `fss console` and `fss manager`. Commands are
   newline-terminated lines. Every response is a block of free-text lines
   between ReportStart and ReportEnd markers.
2) The report channel between a worker and the manager that spawned it. The
   worker prints a STATUS line and a DETAILS line on its standard output. A
   full-directory sync wraps them in ReportStart/ReportEnd, while single-file
   operations only print the trailing ReportEnd.

The worker is invoked with four positional arguments: the source directory,
the target directory, a file name (or AllFiles), and the Operation.
*/
package protocol
