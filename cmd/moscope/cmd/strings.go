/*
Copyright © 2018-2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/moscope/moscope/internal/commands/inspect"
	"github.com/moscope/moscope/pkg/report"
)

func init() {
	rootCmd.AddCommand(stringsCmd)

	stringsCmd.Flags().IntP("arch", "a", -1, "Which architecture to use for fat/universal Mach-O")
	stringsCmd.Flags().BoolP("json", "j", false, "Print the strings as JSON")
	stringsCmd.Flags().Int("min-len", 4, "Minimum length of strings to print")
	stringsCmd.Flags().Int("max-strings", 0, "Maximum number of strings to print")
	stringsCmd.Flags().StringSlice("string-sections", nil, "Sections to scan (default: all)")
	stringsCmd.Flags().StringSlice("exclude-sections", nil, "Sections to skip")
	stringsCmd.Flags().String("string-pattern", "", "Only print strings matching this regex")

	viper.BindPFlag("strings.arch", stringsCmd.Flags().Lookup("arch"))
	viper.BindPFlag("strings.json", stringsCmd.Flags().Lookup("json"))
	viper.BindPFlag("strings.min-len", stringsCmd.Flags().Lookup("min-len"))
	viper.BindPFlag("strings.max-strings", stringsCmd.Flags().Lookup("max-strings"))
	viper.BindPFlag("strings.string-sections", stringsCmd.Flags().Lookup("string-sections"))
	viper.BindPFlag("strings.exclude-sections", stringsCmd.Flags().Lookup("exclude-sections"))
	viper.BindPFlag("strings.string-pattern", stringsCmd.Flags().Lookup("string-pattern"))

	stringsCmd.MarkZshCompPositionalArgumentFile(1)
}

// stringsCmd represents the strings command
var stringsCmd = &cobra.Command{
	Use:   "strings <macho>",
	Short: "Extract printable strings from a Mach-O",
	Example: heredoc.Doc(`
		# All cstrings of at least 8 bytes
		❯ moscope strings --min-len 8 /usr/bin/true
		# URLs only
		❯ moscope strings --string-pattern '^https?://' /usr/lib/dyld`),
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect.Inspect(os.Stdout, args[0], inspect.Config{
			Arch:            viper.GetInt("strings.arch"),
			JSON:            viper.GetBool("strings.json"),
			Interactive:     true,
			Report:          report.Config{Strings: true},
			MinLen:          viper.GetInt("strings.min-len"),
			MaxStrings:      viper.GetInt("strings.max-strings"),
			StringSections:  viper.GetStringSlice("strings.string-sections"),
			ExcludeSections: viper.GetStringSlice("strings.exclude-sections"),
			StringPattern:   viper.GetString("strings.string-pattern"),
		})
	},
}
