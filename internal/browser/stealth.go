package browser

// stealthScript hides the usual automation tells before any page script runs.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', {
    get: () => undefined,
});

window.chrome = {
    runtime: {},
    loadTimes: function() {},
    csi: function() {},
    app: {},
};

Object.defineProperty(navigator, 'plugins', {
    get: () => [
        { name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
        { name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai', description: '' },
    ],
});

Object.defineProperty(navigator, 'languages', {
    get: () => ['zh-CN', 'zh', 'en'],
});

const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
    parameters.name === 'notifications' ?
        Promise.resolve({ state: Notification.permission }) :
        originalQuery(parameters)
);
`

// snapshotScript serialises the elements matching a selector into the
// shape of collector.Element. %s is the JSON-quoted selector.
const snapshotScript = `(() => {
    const sel = %s;
    let nodes;
    try { nodes = document.querySelectorAll(sel); } catch (e) { return []; }
    return Array.from(nodes).map((el, i) => {
        const r = el.getBoundingClientRect();
        const style = window.getComputedStyle(el);
        return {
            selector: sel,
            index: i,
            text: (el.innerText || '').trim(),
            href: el.href || el.getAttribute('href') || '',
            links: Array.from(el.querySelectorAll('a[href]')).map(a => a.href),
            markup: el.outerHTML.slice(0, 400),
            visible: r.width > 0 && r.height > 0 && style.visibility !== 'hidden' && style.display !== 'none',
        };
    });
})()`

// centerScript returns the viewport centre of the index-th match, or null.
const centerScript = `(() => {
    const el = document.querySelectorAll(%s)[%d];
    if (!el) return null;
    const r = el.getBoundingClientRect();
    return { x: r.left + r.width / 2, y: r.top + r.height / 2 };
})()`

const intoViewScript = `(() => {
    const el = document.querySelectorAll(%s)[%d];
    if (!el) return false;
    el.scrollIntoView({ block: 'center', behavior: 'instant' });
    return true;
})()`
