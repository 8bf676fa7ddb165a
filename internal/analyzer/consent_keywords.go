package analyzer

// cmp is a consent management platform with the selectors of its banner and
// its accept control.
type cmp struct {
	platform string
	banner   []string
	accept   []string
}

// cmps lists known consent management platforms. They are tried before the
// generic selectors.
var cmps = []cmp{
	{"OneTrust", []string{"#onetrust-banner-sdk", "#onetrust-consent-sdk"}, []string{"#onetrust-accept-btn-handler"}},
	{"Cookiebot", []string{"#CybotCookiebotDialog"}, []string{"#CybotCookiebotDialogBodyLevelButtonLevelOptinAllowAll", "#CybotCookiebotDialogBodyButtonAccept"}},
	{"Didomi", []string{"#didomi-notice", "#didomi-popup"}, []string{"#didomi-notice-agree-button"}},
	{"Quantcast", []string{"#qc-cmp2-ui", ".qc-cmp2-container"}, []string{`.qc-cmp2-summary-buttons button[mode="primary"]`}},
	{"Usercentrics", []string{"#usercentrics-root", "#uc-banner"}, []string{`[data-testid="uc-accept-all-button"]`}},
	{"TrustArc", []string{"#truste-consent-track", ".truste_box_overlay"}, []string{"#truste-consent-button"}},
	{"Osano", []string{".osano-cm-window", ".osano-cm-dialog"}, []string{".osano-cm-accept-all"}},
	{"CookieYes", []string{".cky-consent-container", "#cookie-law-info-bar"}, []string{".cky-btn-accept", "#cookie_action_close_header"}},
	{"Complianz", []string{"#cmplz-cookiebanner-container", ".cmplz-cookiebanner"}, []string{".cmplz-accept"}},
	{"Iubenda", []string{"#iubenda-cs-banner"}, []string{".iubenda-cs-accept-btn"}},
	{"Axeptio", []string{"#axeptio_overlay"}, []string{"#axeptio_btn_acceptAll"}},
	{"CookieScript", []string{"#cookiescript_injected"}, []string{"#cookiescript_accept"}},
	{"Cookie Consent", []string{".cc-window"}, []string{".cc-allow", ".cc-dismiss"}},
}

// genericBannerSelectors match hand-rolled banners by common naming.
// Attribute values are lowercase; pages using other casing are missed.
var genericBannerSelectors = []string{
	`[id*="cookie-banner"]`,
	`[class*="cookie-banner"]`,
	`[id*="cookie-consent"]`,
	`[class*="cookie-consent"]`,
	`[id*="cookie-notice"]`,
	`[class*="cookie-notice"]`,
	`[id*="cookiebanner"]`,
	`[class*="cookiebanner"]`,
	`[id*="cookie-law"]`,
	`[class*="cookie-law"]`,
	`[id*="gdpr"]`,
	`[class*="gdpr"]`,
	`[id*="consent-banner"]`,
	`[class*="consent-banner"]`,
	`[role="dialog"][aria-label*="cookie"]`,
	`[role="dialog"][aria-label*="consent"]`,
	`[aria-label*="cookie"]`,
}

// buttonSelectors select clickable controls inside a banner.
var buttonSelectors = []string{
	"button",
	"a",
	`[role="button"]`,
	`input[type="button"]`,
	`input[type="submit"]`,
}

// toggleSelectors select consent category toggles inside a banner.
var toggleSelectors = []string{
	`input[type="checkbox"]`,
	`[role="switch"]`,
}

var acceptKeywords = []string{
	"accept", "accept all", "accept cookies", "allow", "allow all", "allow cookies",
	"agree", "i agree", "got it", "ok", "okay", "yes",
	"akzeptieren", "alle akzeptieren", "zustimmen", "annehmen", "einverstanden", "alle erlauben",
	"accepter", "tout accepter", "j'accepte", "autoriser",
	"aceptar", "acepto", "aceptar todo", "permitir",
	"accetta", "accetto", "accetta tutto", "consenti",
	"accepteren", "alles accepteren", "akkoord", "toestaan",
	"aceitar", "aceito", "concordo",
	"akceptuj", "zgadzam się", "zaakceptuj",
}

var rejectKeywords = []string{
	"reject", "reject all", "decline", "deny", "refuse", "disagree", "no thanks",
	"only necessary", "necessary only", "essential only", "only essential",
	"use necessary cookies only", "continue without accepting",
	"ablehnen", "alle ablehnen", "nur notwendige", "nur essenzielle", "verweigern",
	"refuser", "tout refuser", "continuer sans accepter",
	"rechazar", "rechazar todo", "denegar",
	"rifiuta", "rifiuta tutto", "rifiuto",
	"weigeren", "alles weigeren", "afwijzen",
	"rejeitar", "recusar",
	"odrzuć", "odrzuć wszystkie",
}

var settingsKeywords = []string{
	"settings", "cookie settings", "preferences", "manage", "manage cookies",
	"customize", "customise", "options", "more options", "configure", "save preferences",
	"einstellungen", "anpassen", "verwalten",
	"paramètres", "personnaliser", "gérer",
	"configuración", "configurar", "preferencias", "personalizar",
	"impostazioni", "preferenze", "personalizza", "gestisci",
	"instellingen", "voorkeuren", "aanpassen",
	"definições", "preferências", "gerir",
	"ustawienia", "dostosuj",
}

var closeKeywords = []string{
	"×", "✕", "✖", "x", "close", "dismiss",
	"schließen", "fermer", "cerrar", "chiudi", "sluiten", "fechar", "zamknij",
}

// consentCategories maps consent categories to the keywords naming them.
var consentCategories = []struct {
	name     string
	keywords []string
}{
	{"analytics", []string{"analytics", "analytical", "statistics", "statistic", "performance", "measurement", "statistik", "statistiken", "statistiques", "mesure d'audience", "estadísticas", "analíticas", "statistiche", "analitici", "statistieken", "analytische", "estatísticas", "analíticos", "statystyczne", "analityczne"}},
	{"marketing", []string{"marketing", "advertising", "targeting", "ads", "werbung", "publicité", "ciblage", "publicidad", "pubblicità", "profilazione", "advertenties", "publicidade", "reklamowe"}},
	{"preferences", []string{"preferences", "functional", "functionality", "personalization", "personalisation", "präferenzen", "funktional", "fonctionnel", "fonctionnels", "preferencias", "funcionales", "funzionali", "functioneel", "funcionais", "funkcjonalne"}},
	{"social", []string{"social media", "social", "soziale medien", "réseaux sociaux", "redes sociales", "social network", "sociale media", "media społecznościowe"}},
}

var essentialKeywords = []string{
	"necessary", "essential", "strictly", "required", "technical",
	"notwendig", "notwendige", "erforderlich", "essenziell",
	"nécessaires", "essentiels", "techniques",
	"necesarias", "técnicas",
	"necessari", "tecnici",
	"noodzakelijk", "functioneel noodzakelijk",
	"necessários",
	"niezbędne",
}
