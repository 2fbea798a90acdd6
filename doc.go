// Package bibsort splits bibtex files into raw entries and reorders them by
// citation key without touching their contents. Entries are kept verbatim,
// byte for byte, so the only difference between input and output is order.
//
// BNF of what the splitter recognizes
//
//	Database     ::= Preamble? (Entry Junk?)*
//	Preamble     ::= any text before the first top-level '@'
//	Junk         ::= any text between entries (attached to the entry after it)
//	Entry        ::= '@' Type '{' Key ',' Body '}'
//	              |  '@' Type '(' Key ',' Body ')'
//	Type         ::= Name
//	Key          ::= [^,})(\s"]*
//	Body         ::= anything with balanced braces; braces and '@' inside
//	                 '"'-quoted spans or after '\' do not count
package bibsort
