package catalog

import "strings"

// DisplayName returns the human-readable name for a locale code, falling
// back to a name derived from the code parts ("xx-yy" → "Xx/YY") when the
// code is not in the table.
func DisplayName(code string) string {
	if name, ok := displayNames[code]; ok {
		return name
	}
	parts := strings.Split(code, "-")
	if len(parts) == 2 {
		lang := strings.ToUpper(parts[0][:1]) + parts[0][1:]
		return lang + "/" + strings.ToUpper(parts[1])
	}
	return strings.ToUpper(code)
}

// Names returns display names for every locale in the catalog, merged over
// existing so names of locales Apple no longer publishes are kept.
func Names(existing map[string]string, catalog map[string]string) map[string]string {
	merged := make(map[string]string, len(existing)+len(catalog))
	for code, name := range existing {
		merged[code] = name
	}
	for code := range catalog {
		merged[code] = DisplayName(code)
	}
	return merged
}

// displayNames maps the locale codes Apple publishes to display names,
// keyed by ISO 639-1 language and ISO 3166-1 alpha-2 region.
var displayNames = map[string]string{
	// Arabic variants
	"ar-ae": "Arabic/UAE",
	"ar-bh": "Arabic/Bahrain",
	"ar-dz": "Arabic/Algeria",
	"ar-eg": "Arabic/Egypt",
	"ar-iq": "Arabic/Iraq",
	"ar-jo": "Arabic/Jordan",
	"ar-kw": "Arabic/Kuwait",
	"ar-lb": "Arabic/Lebanon",
	"ar-ly": "Arabic/Libya",
	"ar-ma": "Arabic/Morocco",
	"ar-om": "Arabic/Oman",
	"ar-qa": "Arabic/Qatar",
	"ar-sa": "Arabic/Saudi Arabia",
	"ar-sy": "Arabic/Syria",
	"ar-tn": "Arabic/Tunisia",
	"ar-ye": "Arabic/Yemen",
	// Bulgarian
	"bg-bg": "Bulgarian/Bulgaria",
	// Catalan
	"ca-es": "Catalan/Spain",
	// Czech
	"cs-cz": "Czech/Czech Republic",
	// Welsh
	"cy-gb": "Welsh/UK",
	// Danish
	"da-dk": "Danish/Denmark",
	// German variants
	"de-at": "German/Austria",
	"de-ch": "German/Switzerland",
	"de-de": "German/Germany",
	"de-li": "German/Liechtenstein",
	"de-lu": "German/Luxembourg",
	// Greek
	"el-cy": "Greek/Cyprus",
	"el-gr": "Greek/Greece",
	// English variants
	"en-ae": "English/UAE",
	"en-al": "English/Albania",
	"en-am": "English/Armenia",
	"en-au": "English/Australia",
	"en-az": "English/Azerbaijan",
	"en-bh": "English/Bahrain",
	"en-bn": "English/Brunei",
	"en-bw": "English/Botswana",
	"en-by": "English/Belarus",
	"en-ca": "English/Canada",
	"en-eg": "English/Egypt",
	"en-gb": "English/UK",
	"en-ge": "English/Georgia",
	"en-gu": "English/Guam",
	"en-gw": "English/Guinea-Bissau",
	"en-hk": "English/Hong Kong",
	"en-ie": "English/Ireland",
	"en-il": "English/Israel",
	"en-in": "English/India",
	"en-is": "English/Iceland",
	"en-jo": "English/Jordan",
	"en-ke": "English/Kenya",
	"en-kg": "English/Kyrgyzstan",
	"en-kw": "English/Kuwait",
	"en-kz": "English/Kazakhstan",
	"en-lb": "English/Lebanon",
	"en-lk": "English/Sri Lanka",
	"en-md": "English/Moldova",
	"en-me": "English/Montenegro",
	"en-mk": "English/North Macedonia",
	"en-mn": "English/Mongolia",
	"en-mo": "English/Macau",
	"en-mt": "English/Malta",
	"en-my": "English/Malaysia",
	"en-mz": "English/Mozambique",
	"en-ng": "English/Nigeria",
	"en-nz": "English/New Zealand",
	"en-om": "English/Oman",
	"en-ph": "English/Philippines",
	"en-qa": "English/Qatar",
	"en-sa": "English/Saudi Arabia",
	"en-sg": "English/Singapore",
	"en-tj": "English/Tajikistan",
	"en-tm": "English/Turkmenistan",
	"en-ug": "English/Uganda",
	"en-us": "English/USA",
	"en-uz": "English/Uzbekistan",
	"en-vn": "English/Vietnam",
	"en-za": "English/South Africa",
	// Spanish variants
	"es-ar": "Spanish/Argentina",
	"es-bo": "Spanish/Bolivia",
	"es-cl": "Spanish/Chile",
	"es-co": "Spanish/Colombia",
	"es-cr": "Spanish/Costa Rica",
	"es-do": "Spanish/Dominican Republic",
	"es-ec": "Spanish/Ecuador",
	"es-es": "Spanish/Spain",
	"es-gt": "Spanish/Guatemala",
	"es-hn": "Spanish/Honduras",
	"es-mx": "Spanish/Mexico",
	"es-ni": "Spanish/Nicaragua",
	"es-pa": "Spanish/Panama",
	"es-pe": "Spanish/Peru",
	"es-py": "Spanish/Paraguay",
	"es-sv": "Spanish/El Salvador",
	"es-us": "Spanish/USA",
	"es-uy": "Spanish/Uruguay",
	"es-ve": "Spanish/Venezuela",
	// Estonian
	"et-ee": "Estonian/Estonia",
	// Basque
	"eu-es": "Basque/Spain",
	// Finnish
	"fi-fi": "Finnish/Finland",
	// French variants
	"fr-be": "French/Belgium",
	"fr-ca": "French/Canada",
	"fr-cf": "French/Central African Republic",
	"fr-ch": "French/Switzerland",
	"fr-ci": "French/Côte d'Ivoire",
	"fr-cm": "French/Cameroon",
	"fr-fr": "French/France",
	"fr-gn": "French/Guinea",
	"fr-gq": "French/Equatorial Guinea",
	"fr-lu": "French/Luxembourg",
	"fr-ma": "French/Morocco",
	"fr-mg": "French/Madagascar",
	"fr-ml": "French/Mali",
	"fr-mu": "French/Mauritius",
	"fr-ne": "French/Niger",
	"fr-sn": "French/Senegal",
	"fr-tn": "French/Tunisia",
	// Irish
	"ga-ie": "Irish/Ireland",
	// Galician
	"gl-es": "Galician/Spain",
	// Hebrew
	"he-il": "Hebrew/Israel",
	// Croatian
	"hr-hr": "Croatian/Croatia",
	// Hungarian
	"hu-hu": "Hungarian/Hungary",
	// Indonesian
	"id-id": "Indonesian/Indonesia",
	// Icelandic
	"is-is": "Icelandic/Iceland",
	// Italian variants
	"it-ch": "Italian/Switzerland",
	"it-it": "Italian/Italy",
	// Japanese
	"ja-jp": "Japanese/Japan",
	// Korean
	"ko-kr": "Korean/South Korea",
	// Lithuanian
	"lt-lt": "Lithuanian/Lithuania",
	// Latvian
	"lv-lv": "Latvian/Latvia",
	// Malay
	"ms-my": "Malay/Malaysia",
	// Maltese
	"mt-mt": "Maltese/Malta",
	// Norwegian: nb is Bokmål, nn is Nynorsk, no is the generic code Apple
	// uses for Bokmål.
	"nb-no": "Norwegian Bokmål/Norway",
	"nn-no": "Norwegian Nynorsk/Norway",
	"no-no": "Norwegian/Norway",
	// Dutch
	"nl-be": "Dutch/Belgium",
	"nl-nl": "Dutch/Netherlands",
	// Polish
	"pl-pl": "Polish/Poland",
	// Portuguese variants
	"pt-ao": "Portuguese/Angola",
	"pt-br": "Portuguese/Brazil",
	"pt-mz": "Portuguese/Mozambique",
	"pt-pt": "Portuguese/Portugal",
	// Romanian
	"ro-md": "Romanian/Moldova",
	"ro-ro": "Romanian/Romania",
	// Russian
	"ru-ru": "Russian/Russia",
	// Slovak
	"sk-sk": "Slovak/Slovakia",
	// Slovenian
	"sl-si": "Slovenian/Slovenia",
	// Serbian
	"sr-rs": "Serbian/Serbia",
	// Swedish
	"sv-se": "Swedish/Sweden",
	// Thai
	"th-th": "Thai/Thailand",
	// Turkish
	"tr-tr": "Turkish/Turkey",
	// Ukrainian
	"uk-ua": "Ukrainian/Ukraine",
	// Vietnamese
	"vi-vn": "Vietnamese/Vietnam",
	// Chinese variants
	"zh-cn": "Chinese/China",
	"zh-hk": "Chinese/Hong Kong",
	"zh-mo": "Chinese/Macau",
	"zh-sg": "Chinese/Singapore",
	"zh-tw": "Chinese/Taiwan",
}
