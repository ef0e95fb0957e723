package chrome

const scrollHeightScript = `Math.max(
	document.body ? document.body.scrollHeight : 0,
	document.documentElement ? document.documentElement.scrollHeight : 0
)`

const scrollByScript = `window.scrollBy(0, %d)`

const documentHTMLScript = `(() => {
	const doctype = document.doctype ? new XMLSerializer().serializeToString(document.doctype) : '';
	return doctype + document.documentElement.outerHTML;
})()`

const bodyTextScript = `document.body ? document.body.innerText : ''`

// href is read as written in the markup so relative links stay relative.
const anchorsScript = `Array.from(document.querySelectorAll('a')).map(a => ({
	text: (a.innerText || '').trim(),
	href: a.getAttribute('href') || ''
}))`
